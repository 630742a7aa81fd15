package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skipfurther/internal/adapter/api"
	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
	"skipfurther/internal/adapter/repository/memory"
	"skipfurther/internal/infrastructure/devauth"
	"skipfurther/internal/infrastructure/ratelimit"
	"skipfurther/internal/infrastructure/storage"
	"skipfurther/internal/usecase"
	"skipfurther/pkg/response"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newServer(t *testing.T, apiPerMinute int) *testServer {
	t.Helper()

	store := memory.NewStore()
	store.SeedCategories(memory.DefaultCategories()...)
	profiles := memory.NewProfileRepository(store)
	listings := memory.NewListingRepository(store)
	bids := memory.NewBidRepository(store)
	transactions := memory.NewTransactionRepository(store)
	reviews := memory.NewReviewRepository(store)
	watchlist := memory.NewWatchlistRepository(store)
	files := storage.NewMemoryStorage()
	identity := devauth.NewProvider("router-test", time.Hour)

	notifications := usecase.NewNotificationUseCase(memory.NewNotificationRepository(store), nil)
	handler.Setup(handler.UseCases{
		Auth:         usecase.NewAuthUseCase(profiles, identity, "http://localhost:3000"),
		Profile:      usecase.NewProfileUseCase(profiles, files),
		Listing:      usecase.NewListingUseCase(listings, bids, profiles, files),
		Bid:          usecase.NewBidUseCase(bids, listings, profiles, notifications, nil),
		Transaction:  usecase.NewTransactionUseCase(transactions, listings, profiles, files, notifications),
		Review:       usecase.NewReviewUseCase(reviews, transactions, profiles, notifications),
		Notification: notifications,
		Watchlist:    usecase.NewWatchlistUseCase(watchlist, listings),
		Dashboard:    usecase.NewDashboardUseCase(listings, bids, transactions, watchlist),
	})
	handler.SetupHealthHandler("memory", map[string]handler.Pinger{})
	handler.SetupDevTokenHandler(identity, profiles)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler
	Setup(e, middleware.NewAuthMiddleware(identity), Options{
		Environment: "development",
		APILimiter:  ratelimit.NewRateLimiter(apiPerMinute),
	})

	return &testServer{t: t, e: e}
}

func (s *testServer) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) json(method, target, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return s.do(req, token)
}

func (s *testServer) multipart(target, token string, fields map[string]string, fileField string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, "proof.png")
		require.NoError(s.t, err)
		_, err = part.Write([]byte("\x89PNG fake"))
		require.NoError(s.t, err)
	}
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return s.do(req, token)
}

// signup registers a user and returns its id and bearer token.
func (s *testServer) signup(username string) (string, string) {
	s.t.Helper()
	rec, env := s.json(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
		"username": username,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Session struct {
			IDToken string `json:"id_token"`
		} `json:"session"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(s.t, result.Session.IDToken)
	return result.User.ID, result.Session.IDToken
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestMarketplaceFlow(t *testing.T) {
	s := newServer(t, 1000)
	sellerID, sellerToken := s.signup("seller")
	buyerID, buyerToken := s.signup("buyer")

	rec, env := s.json(http.MethodPost, "/api/listings", sellerToken, map[string]interface{}{
		"category_id":         "cat-tech",
		"title":               "Spot #12 for the beta",
		"company_or_event":    "Acme Glasses",
		"verification_method": "invite_code",
		"price":               49.99,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var listing struct {
		ID       string  `json:"id"`
		SellerID string  `json:"seller_id"`
		Price    float64 `json:"price"`
	}
	decodeData(t, env, &listing)
	assert.Equal(t, sellerID, listing.SellerID)

	rec, env = s.json(http.MethodGet, "/api/listings?category=tech-launches", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items    []json.RawMessage `json:"items"`
		Total    int64             `json:"total"`
		PageSize int               `json:"pageSize"`
	}
	decodeData(t, env, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 10, page.PageSize)

	rec, _ = s.json(http.MethodPost, "/api/watchlist/"+listing.ID, buyerToken, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env = s.json(http.MethodPost, "/api/transactions", buyerToken, map[string]string{"listingId": listing.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var txn struct {
		ID      string  `json:"id"`
		BuyerID string  `json:"buyer_id"`
		Amount  float64 `json:"amount"`
		Status  string  `json:"status"`
	}
	decodeData(t, env, &txn)
	assert.Equal(t, buyerID, txn.BuyerID)
	assert.Equal(t, 49.99, txn.Amount)

	rec, env = s.json(http.MethodPost, "/api/transactions", buyerToken, map[string]string{"listingId": listing.ID})
	assert.GreaterOrEqual(t, rec.Code, 400)
	assert.False(t, env.Success)

	target := fmt.Sprintf("/api/transactions/%s/verify", txn.ID)
	rec, _ = s.multipart(target, sellerToken, map[string]string{
		"verificationMethod": "invite_code",
		"verificationData":   "INVITE-42",
	}, "proofImage")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = s.multipart(target, buyerToken, map[string]string{"verificationMethod": "invite_code"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var verified struct {
		Transaction struct {
			Status string `json:"status"`
		} `json:"transaction"`
	}
	decodeData(t, env, &verified)
	assert.Equal(t, "completed", verified.Transaction.Status)

	rec, env = s.json(http.MethodGet, "/api/transactions/"+txn.ID+"/verifications", sellerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var verifications []json.RawMessage
	decodeData(t, env, &verifications)
	assert.Len(t, verifications, 2)

	rec, _ = s.json(http.MethodPost, "/api/reviews", buyerToken, map[string]interface{}{
		"userId":        sellerID,
		"transactionId": txn.ID,
		"rating":        5,
		"comment":       "Smooth handover",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = s.json(http.MethodGet, "/api/reviews/user/"+sellerID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		AverageRating float64 `json:"average_rating"`
		ReviewCount   int     `json:"review_count"`
	}
	decodeData(t, env, &summary)
	assert.Equal(t, 5.0, summary.AverageRating)
	assert.Equal(t, 1, summary.ReviewCount)

	rec, env = s.json(http.MethodGet, "/api/notifications?unreadOnly=true", sellerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes struct {
		Items       []json.RawMessage `json:"items"`
		UnreadCount int64             `json:"unreadCount"`
	}
	decodeData(t, env, &notes)
	assert.NotZero(t, notes.UnreadCount)
	assert.Len(t, notes.Items, int(notes.UnreadCount))

	rec, env = s.json(http.MethodPatch, "/api/notifications", sellerToken, map[string]bool{"markAllAsRead": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", env.Error.Message)

	rec, _ = s.json(http.MethodPatch, "/api/notifications", sellerToken, map[string]bool{"markAllAsRead": true})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.json(http.MethodGet, "/api/dashboard", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		CompletedTransactions int64 `json:"completed_transactions"`
	}
	decodeData(t, env, &dash)
	assert.Equal(t, int64(1), dash.CompletedTransactions)
}

func TestAuthAndValidationErrors(t *testing.T) {
	s := newServer(t, 1000)
	_, token := s.signup("seller")

	rec, env := s.json(http.MethodPost, "/api/listings", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, _ = s.json(http.MethodGet, "/api/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.json(http.MethodPost, "/api/listings", token, map[string]interface{}{
		"category_id":         "cat-tech",
		"company_or_event":    "Acme",
		"verification_method": "invite_code",
		"price":               10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "title is required", env.Error.Message)

	rec, env = s.json(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    "seller2@example.com",
		"password": "password123",
		"username": "seller",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)

	rec, _ = s.json(http.MethodGet, "/api/reviews", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.json(http.MethodGet, "/api/transactions?role=admin", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.json(http.MethodDelete, "/api/listings/missing/images", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuctionBidsOverHTTP(t *testing.T) {
	s := newServer(t, 1000)
	_, sellerToken := s.signup("seller")
	_, bidderToken := s.signup("bidder")

	end := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	rec, env := s.json(http.MethodPost, "/api/listings", sellerToken, map[string]interface{}{
		"category_id":         "cat-events",
		"title":               "Front row queue spot",
		"company_or_event":    "Summer Fest",
		"verification_method": "email_transfer",
		"is_auction":          true,
		"minimum_bid":         20,
		"auction_end_time":    end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var listing struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &listing)

	rec, _ = s.json(http.MethodPost, "/api/bids", bidderToken, map[string]interface{}{"listingId": listing.ID, "amount": 15})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.json(http.MethodPost, "/api/bids", sellerToken, map[string]interface{}{"listingId": listing.ID, "amount": 30})
	assert.GreaterOrEqual(t, rec.Code, 400)

	rec, _ = s.json(http.MethodPost, "/api/bids", bidderToken, map[string]interface{}{"listingId": listing.ID, "amount": 25})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = s.json(http.MethodGet, "/api/listings/"+listing.ID+"/bids", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bids []struct {
		Amount float64 `json:"amount"`
		Bidder struct {
			Username string `json:"username"`
		} `json:"bidder"`
	}
	decodeData(t, env, &bids)
	require.Len(t, bids, 1)
	assert.Equal(t, 25.0, bids[0].Amount)
	assert.Equal(t, "bidder", bids[0].Bidder.Username)

	rec, env = s.json(http.MethodGet, "/api/bids", bidderToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []json.RawMessage
	decodeData(t, env, &mine)
	assert.Len(t, mine, 1)
}

func TestAPIRateLimit(t *testing.T) {
	s := newServer(t, 2)

	for i := 0; i < 2; i++ {
		rec, _ := s.json(http.MethodGet, "/api/listings/categories", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := s.json(http.MethodGet, "/api/listings/categories", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.NotNil(t, env.Error)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)

	rec, _ = s.json(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDevTokenRoute(t *testing.T) {
	s := newServer(t, 1000)
	uid, _ := s.signup("seller")

	rec, env := s.json(http.MethodGet, "/_dev/token?uid="+uid, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var issued struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &issued)

	rec, env = s.json(http.MethodGet, "/api/profile", issued.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(string(env.Data), `"username":"seller"`))

	rec, _ = s.json(http.MethodGet, "/_dev/token?uid=nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
