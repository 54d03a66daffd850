package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRecordPayment(t *testing.T) {
	db := freshDB()
	router := setupShopRouter(db)
	_, adminToken := seedTestUser(db, "boss", "admin")
	prod := seedProduct(db, "Lamp", "30.00", 5, nil)
	orderID := checkoutAs(t, router, prod, 1, withSession("lamp"))["id"].(string)

	body := map[string]interface{}{"order_id": orderID, "amount": "30.00", "transaction_id": "pay-1"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/payments", body, adminToken))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["payment_status"] != "Pending" {
		t.Errorf("expected Pending status, got %v", resp["payment_status"])
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/payments", body, adminToken))
	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409 for duplicate transaction, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/orders/"+orderID+"/payments", nil, adminToken))
	if got := len(parseResponseArray(w)); got != 1 {
		t.Errorf("expected 1 payment for order, got %d", got)
	}
}

func TestRecordPaymentErrors(t *testing.T) {
	db := freshDB()
	router := setupShopRouter(db)
	_, adminToken := seedTestUser(db, "boss", "admin")
	_, token := seedTestUser(db, "shopper", "customer")

	tests := []struct {
		name  string
		body  map[string]interface{}
		token string
		want  int
	}{
		{"missing amount", map[string]interface{}{"order_id": uuid.New().String(), "transaction_id": "a"}, adminToken, http.StatusBadRequest},
		{"missing transaction", map[string]interface{}{"order_id": uuid.New().String(), "amount": 5}, adminToken, http.StatusBadRequest},
		{"unknown order", map[string]interface{}{"order_id": uuid.New().String(), "amount": 5, "transaction_id": "b"}, adminToken, http.StatusNotFound},
		{"not admin", map[string]interface{}{"order_id": uuid.New().String(), "amount": 5, "transaction_id": "c"}, token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, authRequest("POST", "/api/admin/payments", tt.body, tt.token))
			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	db := freshDB()
	router := setupShopRouter(db)
	_, adminToken := seedTestUser(db, "boss", "admin")
	prod := seedProduct(db, "Rug", "80.00", 2, nil)
	orderID := checkoutAs(t, router, prod, 1, withSession("rug"))["id"].(string)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/payments",
		map[string]interface{}{"order_id": orderID, "amount": 80, "transaction_id": "rug-tx"}, adminToken))
	paymentID := parseResponse(w)["id"].(string)
	url := "/api/admin/payments/" + paymentID + "/status"

	steps := []struct {
		status string
		want   int
	}{
		{"Failed", http.StatusOK},
		{"Completed", http.StatusConflict},
		{"Pending", http.StatusOK},
		{"Completed", http.StatusOK},
		{"Pending", http.StatusConflict},
		{"Refunded", http.StatusBadRequest},
	}
	for _, step := range steps {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authRequest("PUT", url, map[string]interface{}{"status": step.status}, adminToken))
		if w.Code != step.want {
			t.Fatalf("moving to %s: expected status %d, got %d: %s", step.status, step.want, w.Code, w.Body.String())
		}
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/payments/"+uuid.New().String()+"/status",
		map[string]interface{}{"status": "Failed"}, adminToken))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown payment, got %d", w.Code)
	}
}

func TestGetPaymentTransitions(t *testing.T) {
	db := freshDB()
	router := setupShopRouter(db)
	_, adminToken := seedTestUser(db, "boss", "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/payments/transitions", nil, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	pending, _ := resp["Pending"].([]interface{})
	if len(pending) != 2 {
		t.Errorf("expected 2 moves out of Pending, got %v", resp["Pending"])
	}
	completed, _ := resp["Completed"].([]interface{})
	if len(completed) != 0 {
		t.Errorf("expected Completed to be terminal, got %v", resp["Completed"])
	}
}
