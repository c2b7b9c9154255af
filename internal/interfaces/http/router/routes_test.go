package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	inventoryapp "github.com/tablekit/backoffice/internal/application/inventory"
	orderapp "github.com/tablekit/backoffice/internal/application/order"
	tableapp "github.com/tablekit/backoffice/internal/application/table"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/auth"
	"github.com/tablekit/backoffice/internal/infrastructure/cache"
	"github.com/tablekit/backoffice/internal/infrastructure/config"
	"github.com/tablekit/backoffice/internal/infrastructure/persistence"
	"github.com/tablekit/backoffice/internal/infrastructure/persistence/models"
	"github.com/tablekit/backoffice/internal/interfaces/http/handler"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	jwt    *auth.JWTService
	tokens map[shared.Role]string
	db     *gorm.DB
	dbUp   bool
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	scope := persistence.NewGormTransactionScope(db)
	orders := orderapp.NewService(scope, persistence.NewGormOrderRepository(db),
		cache.NewInMemoryOrderNumberGenerator(time.UTC), nil)
	tables := tableapp.NewService(scope, persistence.NewGormTableRepository(db), nil)
	inventory := inventoryapp.NewService(scope, persistence.NewGormInventoryItemRepository(db),
		persistence.NewGormInventoryTransactionRepository(db), nil)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-with-32-chars!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "backoffice-test",
	})

	api := &testAPI{t: t, jwt: jwtService, tokens: map[shared.Role]string{}, db: db, dbUp: true}
	health := handler.NewHealthHandler("test").AddCheck("database", func(ctx context.Context) error {
		if !api.dbUp {
			return errors.New("connection refused")
		}
		return sqlDB.PingContext(ctx)
	})

	api.engine = NewEngine(EngineConfig{
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		ServiceName: "backoffice-test",
		JWT:         jwtService,
		Logger:      zap.NewNop(),
	}, Handlers{
		Orders:    handler.NewOrderHandler(orders, time.UTC),
		Tables:    handler.NewTableHandler(tables),
		Inventory: handler.NewInventoryHandler(inventory),
		Health:    health,
	})

	for _, role := range []shared.Role{shared.RoleStaff, shared.RoleManager} {
		issued, err := jwtService.GenerateToken(shared.NewActor(uuid.New(), string(role), role))
		require.NoError(t, err)
		api.tokens[role] = issued.AccessToken
	}
	return api
}

func (a *testAPI) do(role shared.Role, method, path string, body any) (int, apiResponse) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := a.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func (a *testAPI) doRaw(role shared.Role, path, contentType string, body []byte) (int, apiResponse) {
	a.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	if token, ok := a.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func decode[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

func (a *testAPI) createTable(number int) tableapp.TableResponse {
	a.t.Helper()
	code, resp := a.do(shared.RoleManager, http.MethodPost, "/api/v1/tables",
		map[string]any{"number": number, "capacity": 4, "location": "terrace"})
	require.Equal(a.t, http.StatusCreated, code)
	return decode[tableapp.TableResponse](a.t, resp)
}

func orderBody(tableID uuid.UUID) map[string]any {
	return map[string]any{
		"table_id": tableID,
		"items": []map[string]any{
			{"menu_item_id": uuid.New(), "quantity": 2, "unit_price": "9.50"},
			{"menu_item_id": uuid.New(), "quantity": 1, "unit_price": "15.00", "notes": "no onions"},
		},
	}
}

func TestAPI_Health(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	health := decode[handler.HealthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "up", health.Checks["database"])

	api.dbUp = false
	code, resp = api.do("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", decode[handler.HealthResponse](t, resp).Checks["database"])
}

func TestAPI_RequiresToken(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do("", http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)
}

func TestAPI_RoleGates(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(shared.RoleStaff, http.MethodPost, "/api/v1/tables",
		map[string]any{"number": 1, "capacity": 2})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, shared.CodeForbidden, resp.Error.Code)

	code, _ = api.do(shared.RoleStaff, http.MethodPost, "/api/v1/inventory",
		map[string]any{"name": "Flour", "unit": "kg", "quantity": "10"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/tables", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAPI_OrderScenario(t *testing.T) {
	api := newTestAPI(t)
	tbl := api.createTable(5)

	code, resp := api.do(shared.RoleStaff, http.MethodPost, "/api/v1/orders", orderBody(tbl.ID))
	require.Equal(t, http.StatusCreated, code)
	created := decode[orderapp.OrderResponse](t, resp)
	assert.Equal(t, "34.00", created.TotalAmount.StringFixed(2))
	assert.Len(t, created.Items, 2)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/tables/"+tbl.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "occupied", decode[tableapp.TableResponse](t, resp).Status)

	code, resp = api.do(shared.RoleStaff, http.MethodPost, "/api/v1/orders", orderBody(tbl.ID))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, shared.CodeConflict, resp.Error.Code)

	code, resp = api.do(shared.RoleStaff, http.MethodPost, "/api/v1/tables/"+tbl.ID.String()+"/release", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, resp = api.do(shared.RoleStaff, http.MethodPut, "/api/v1/orders/"+created.ID.String()+"/status",
		map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cancelled", decode[orderapp.OrderResponse](t, resp).Status)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/tables/"+tbl.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "available", decode[tableapp.TableResponse](t, resp).Status)

	code, resp = api.do(shared.RoleStaff, http.MethodPut, "/api/v1/orders/"+created.ID.String()+"/status",
		map[string]string{"status": "preparing"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, shared.CodeInvalidTransition, resp.Error.Code)

	code, resp = api.do(shared.RoleStaff, http.MethodGet,
		"/api/v1/orders?status=cancelled&table_id="+tbl.ID.String()+"&date="+time.Now().UTC().Format("2006-01-02"), nil)
	require.Equal(t, http.StatusOK, code)
	listed := decode[[]orderapp.OrderResponse](t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, created.OrderNumber, listed[0].OrderNumber)
}

func TestAPI_OrderValidation(t *testing.T) {
	api := newTestAPI(t)
	tbl := api.createTable(9)

	code, resp := api.do(shared.RoleStaff, http.MethodPost, "/api/v1/orders",
		map[string]any{"table_id": tbl.ID, "items": []any{}})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.CodeValidation, resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "items", resp.Error.Details[0].Field)

	code, resp = api.do(shared.RoleStaff, http.MethodPost, "/api/v1/orders", map[string]any{
		"table_id": tbl.ID,
		"items":    []map[string]any{{"menu_item_id": uuid.New(), "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, shared.CodeValidation, resp.Error.Code)

	code, resp = api.do(shared.RoleStaff, http.MethodPost, "/api/v1/orders", map[string]any{
		"table_id": tbl.ID,
		"items":    []map[string]any{{"menu_item_id": uuid.New(), "quantity": 3, "unit_price": "0.005"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, shared.CodeValidation, resp.Error.Code)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/tables/"+tbl.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "available", decode[tableapp.TableResponse](t, resp).Status)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, shared.CodeNotFound, resp.Error.Code)

	code, _ = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/orders?date=17-10-2026", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/orders?table_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.CodeValidation, resp.Error.Code)
}

func TestAPI_OrderDelete(t *testing.T) {
	api := newTestAPI(t)
	tbl := api.createTable(12)

	code, resp := api.do(shared.RoleStaff, http.MethodPost, "/api/v1/orders", orderBody(tbl.ID))
	require.Equal(t, http.StatusCreated, code)
	created := decode[orderapp.OrderResponse](t, resp)
	path := "/api/v1/orders/" + created.ID.String()

	code, resp = api.do(shared.RoleStaff, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, shared.CodeForbidden, resp.Error.Code)

	code, resp = api.do(shared.RoleManager, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created.ID, decode[handler.DeletedOrder](t, resp).ID)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, shared.CodeNotFound, resp.Error.Code)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/tables/"+tbl.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	released := decode[tableapp.TableResponse](t, resp)
	assert.Equal(t, "available", released.Status)
	assert.Nil(t, released.CurrentOrderID)

	var lines int64
	require.NoError(t, api.db.Model(&models.OrderItemModel{}).Where("order_id = ?", created.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	code, resp = api.do(shared.RoleManager, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, shared.CodeNotFound, resp.Error.Code)

	code, resp = api.do(shared.RoleStaff, http.MethodPost, "/api/v1/orders", orderBody(tbl.ID))
	assert.Equal(t, http.StatusCreated, code)
}

func TestAPI_TableOccupyAndOverride(t *testing.T) {
	api := newTestAPI(t)
	tbl := api.createTable(3)
	path := "/api/v1/tables/" + tbl.ID.String()

	code, resp := api.do(shared.RoleStaff, http.MethodPost, path+"/occupy",
		map[string]any{"order_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, code)
	code, resp = api.do(shared.RoleStaff, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	untouched := decode[tableapp.TableResponse](t, resp)
	assert.Equal(t, "available", untouched.Status)
	assert.Nil(t, untouched.CurrentOrderID)

	code, resp = api.do(shared.RoleStaff, http.MethodPost, path+"/occupy", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "occupied", decode[tableapp.TableResponse](t, resp).Status)

	code, resp = api.do(shared.RoleStaff, http.MethodPost, path+"/release", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "available", decode[tableapp.TableResponse](t, resp).Status)

	code, _ = api.do(shared.RoleStaff, http.MethodPost, path+"/release", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(shared.RoleStaff, http.MethodPut, path+"/status", map[string]string{"status": "maintenance"})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = api.do(shared.RoleManager, http.MethodPut, path+"/status", map[string]string{"status": "maintenance"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "maintenance", decode[tableapp.TableResponse](t, resp).Status)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/tables?status=maintenance", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]tableapp.TableResponse](t, resp), 1)
}

func TestAPI_InventoryLedger(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(shared.RoleManager, http.MethodPost, "/api/v1/inventory", map[string]any{
		"name": "Tomatoes", "unit": "kg", "quantity": "50", "minimum_stock": "10", "unit_cost": "2.40",
	})
	require.Equal(t, http.StatusCreated, code)
	item := decode[inventoryapp.ItemResponse](t, resp)
	assert.Equal(t, "50", item.Quantity.String())
	path := "/api/v1/inventory/" + item.ID.String()

	code, resp = api.do(shared.RoleManager, http.MethodPost, path+"/transactions",
		map[string]any{"type": "out", "quantity": "42.5", "reference": "dinner service"})
	require.Equal(t, http.StatusCreated, code)
	tx := decode[inventoryapp.TransactionResponse](t, resp)
	assert.Equal(t, "-42.5", tx.Quantity.String())
	assert.Equal(t, "7.5", tx.BalanceAfter.String())

	code, resp = api.do(shared.RoleManager, http.MethodPost, path+"/transactions",
		map[string]any{"type": "out", "quantity": "100"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, shared.CodeValidation, resp.Error.Code)

	code, resp = api.do(shared.RoleStaff, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	detail := decode[inventoryapp.ItemDetailResponse](t, resp)
	assert.True(t, detail.LowStock)
	assert.Len(t, detail.RecentTransactions, 2)

	code, resp = api.do(shared.RoleManager, http.MethodGet, path+"/ledger", nil)
	require.Equal(t, http.StatusOK, code)
	check := decode[inventoryapp.LedgerCheckResponse](t, resp)
	assert.True(t, check.Consistent)
	assert.Equal(t, int64(2), check.TransactionCount)

	code, resp = api.do(shared.RoleManager, http.MethodPut, path, map[string]any{
		"name": "Roma tomatoes", "unit": "kg", "minimum_stock": "5", "unit_cost": "2.60",
	})
	require.Equal(t, http.StatusOK, code)
	updated := decode[inventoryapp.ItemResponse](t, resp)
	assert.Equal(t, "Roma tomatoes", updated.Name)
	assert.Equal(t, "7.5", updated.Quantity.String())

	code, resp = api.do(shared.RoleStaff, http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]inventoryapp.ItemResponse](t, resp), 1)
}

func TestAPI_InventoryImport(t *testing.T) {
	api := newTestAPI(t)
	const path = "/api/v1/inventory/import"

	code, _ := api.doRaw(shared.RoleStaff, path, "text/csv", []byte("name,unit\nSalt,kg\n"))
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := api.doRaw(shared.RoleManager, path, "text/csv",
		[]byte("name,unit,quantity\nFlour,kg,10\nSugar,kg,abc\n"))
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, shared.CodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "row[3].quantity", resp.Error.Details[0].Field)

	code, resp = api.doRaw(shared.RoleManager, path, "text/csv", []byte("name,quantity\nFlour,1\n"))
	require.Equal(t, http.StatusBadRequest, code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "unit", resp.Error.Details[0].Field)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "stock.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,unit,quantity,minimum_stock\nFlour,kg,25,5\nEggs,pcs,,\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	code, resp = api.doRaw(shared.RoleManager, path, form.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusCreated, code, resp.Error)
	items := decode[[]inventoryapp.ItemResponse](t, resp)
	require.Len(t, items, 2)
	assert.Equal(t, "Flour", items[0].Name)
	assert.Equal(t, "25", items[0].Quantity.String())
	assert.True(t, items[1].Quantity.IsZero())

	code, resp = api.do(shared.RoleManager, http.MethodGet,
		"/api/v1/inventory/"+items[1].ID.String()+"/ledger", nil)
	require.Equal(t, http.StatusOK, code)
	check := decode[inventoryapp.LedgerCheckResponse](t, resp)
	assert.True(t, check.Consistent)
	assert.Equal(t, int64(1), check.TransactionCount)
}
