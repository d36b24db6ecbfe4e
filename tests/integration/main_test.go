// tests/integration/main_test.go
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/app"
	"libris/internal/config"
)

type TestSuite struct {
	server *httptest.Server
	db     *sqlx.DB
}

func setupTestSuite(t *testing.T) *TestSuite {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}

	cfg := config.Config{
		PG: config.PGConfig{
			DSN:             dsn,
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Circulation: config.CirculationConfig{
			LoanPeriodDays:            14,
			RegistrationRatePerMinute: 600,
			RegistrationBurst:         100,
		},
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	application, err := app.New(cfg, log)
	require.NoError(t, err)

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	_, err = db.Exec("TRUNCATE TABLE borrowings, reviews, books, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	server := httptest.NewServer(application.Router())
	t.Cleanup(func() {
		server.Close()
		db.Close()
		application.Close()
	})

	return &TestSuite{server: server, db: db}
}

func (ts *TestSuite) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.server.URL+path, "application/json", bytes.NewBuffer(b))
	require.NoError(t, err)
	return resp
}

func (ts *TestSuite) addBook(t *testing.T, title, isbn string, copies int) int64 {
	t.Helper()
	resp := ts.postJSON(t, "/api/books", map[string]any{
		"title": title, "author": "Test Author", "isbn": isbn,
		"published_year": 2000, "genre": "fiction", "total_copies": copies,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var book struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&book))
	return book.ID
}

func (ts *TestSuite) addUser(t *testing.T, username string) int64 {
	t.Helper()
	resp := ts.postJSON(t, "/api/users", map[string]any{
		"username": username, "email": username + "@test.com", "full_name": "User " + username,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	return user.ID
}

func (ts *TestSuite) availableCopies(t *testing.T, bookID int64) int {
	t.Helper()
	var available int
	require.NoError(t, ts.db.Get(&available, "SELECT available_copies FROM books WHERE id = $1", bookID))
	return available
}

func TestBorrowAndReturnFlow(t *testing.T) {
	ts := setupTestSuite(t)

	bookID := ts.addBook(t, "Pride and Prejudice", "9780141439518", 2)
	userID := ts.addUser(t, "alice")

	// Borrow: availability drops, due date is two weeks out.
	resp := ts.postJSON(t, "/api/borrowings", map[string]any{"book_id": bookID, "user_id": userID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var borrowed struct {
		ID      int64     `json:"id"`
		DueDate time.Time `json:"due_date"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&borrowed))
	resp.Body.Close()

	wantDue := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 14)
	assert.Equal(t, wantDue.Format("2006-01-02"), borrowed.DueDate.Format("2006-01-02"))
	assert.Equal(t, 1, ts.availableCopies(t, bookID))

	// Return: availability restored, borrowing closed.
	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/api/borrowings/%d/return", ts.server.URL, borrowed.ID), nil)
	require.NoError(t, err)
	retResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	retResp.Body.Close()
	require.Equal(t, http.StatusOK, retResp.StatusCode)
	assert.Equal(t, 2, ts.availableCopies(t, bookID))

	var status string
	var returnedDate *time.Time
	require.NoError(t, ts.db.QueryRow("SELECT status, returned_date FROM borrowings WHERE id = $1", borrowed.ID).Scan(&status, &returnedDate))
	assert.Equal(t, "returned", status)
	require.NotNil(t, returnedDate)

	// Second return conflicts and credits nothing.
	retResp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	retResp2.Body.Close()
	assert.Equal(t, http.StatusConflict, retResp2.StatusCode)
	assert.Equal(t, 2, ts.availableCopies(t, bookID))
}

func TestBorrowPreconditions(t *testing.T) {
	ts := setupTestSuite(t)

	bookID := ts.addBook(t, "Dune", "9780441172719", 1)
	userID := ts.addUser(t, "bob")
	inactiveID := ts.addUser(t, "carol")
	_, err := ts.db.Exec("UPDATE users SET status = 'inactive' WHERE id = $1", inactiveID)
	require.NoError(t, err)

	emptyID := ts.addBook(t, "Empty Shelf", "9780000000001", 1)
	_, err = ts.db.Exec("UPDATE books SET available_copies = 0 WHERE id = $1", emptyID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"missing fields", map[string]any{"book_id": 0, "user_id": 0}, http.StatusBadRequest},
		{"book not found", map[string]any{"book_id": 99999, "user_id": userID}, http.StatusNotFound},
		{"user not found", map[string]any{"book_id": bookID, "user_id": 99999}, http.StatusNotFound},
		{"book unavailable", map[string]any{"book_id": emptyID, "user_id": userID}, http.StatusConflict},
		{"user inactive", map[string]any{"book_id": bookID, "user_id": inactiveID}, http.StatusConflict},
		{"unavailable book outranks unknown user", map[string]any{"book_id": emptyID, "user_id": 99999}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.postJSON(t, "/api/borrowings", tt.body)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	// No failed attempt changed availability.
	assert.Equal(t, 1, ts.availableCopies(t, bookID))
	assert.Equal(t, 0, ts.availableCopies(t, emptyID))
}

func TestBorrowRollsBackOnDecrementFault(t *testing.T) {
	ts := setupTestSuite(t)

	bookID := ts.addBook(t, "Fragile", "9780000000003", 1)
	userID := ts.addUser(t, "frank")

	// Fail the availability decrement after the borrowing insert has
	// already succeeded inside the same transaction.
	_, err := ts.db.Exec(`
		CREATE OR REPLACE FUNCTION reject_book_update() RETURNS trigger AS $$
		BEGIN
			RAISE EXCEPTION 'forced update failure';
		END;
		$$ LANGUAGE plpgsql
	`)
	require.NoError(t, err)
	_, err = ts.db.Exec(`
		CREATE TRIGGER reject_book_update BEFORE UPDATE ON books
		FOR EACH ROW EXECUTE FUNCTION reject_book_update()
	`)
	require.NoError(t, err)
	t.Cleanup(func() {
		ts.db.Exec("DROP TRIGGER IF EXISTS reject_book_update ON books")
		ts.db.Exec("DROP FUNCTION IF EXISTS reject_book_update")
	})

	resp := ts.postJSON(t, "/api/borrowings", map[string]any{"book_id": bookID, "user_id": userID})
	resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// Nothing from the aborted transaction is observable.
	var borrowings int
	require.NoError(t, ts.db.Get(&borrowings, "SELECT COUNT(*) FROM borrowings WHERE book_id = $1", bookID))
	assert.Equal(t, 0, borrowings)
	assert.Equal(t, 1, ts.availableCopies(t, bookID))
}

func TestConcurrentBorrowsOfLastCopy(t *testing.T) {
	ts := setupTestSuite(t)

	bookID := ts.addBook(t, "The Great Gatsby", "9780743273565", 1)

	var userIDs []int64
	for i := 0; i < 10; i++ {
		userIDs = append(userIDs, ts.addUser(t, fmt.Sprintf("member%d", i)))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0
	conflictCount := 0

	for _, userID := range userIDs {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			body, _ := json.Marshal(map[string]any{"book_id": bookID, "user_id": uid})
			resp, err := http.Post(ts.server.URL+"/api/borrowings", "application/json", bytes.NewBuffer(body))
			if err != nil {
				return
			}
			defer resp.Body.Close()

			mu.Lock()
			switch resp.StatusCode {
			case http.StatusCreated:
				successCount++
			case http.StatusConflict:
				conflictCount++
			}
			mu.Unlock()
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, 1, successCount, "exactly one concurrent borrow should succeed")
	assert.Equal(t, 9, conflictCount, "the rest should conflict")
	assert.Equal(t, 0, ts.availableCopies(t, bookID))
}

func TestOverdueListing(t *testing.T) {
	ts := setupTestSuite(t)

	bookID := ts.addBook(t, "Late Book", "9780000000002", 1)
	userID := ts.addUser(t, "dora")

	_, err := ts.db.Exec(`
		INSERT INTO borrowings (book_id, user_id, borrowed_date, due_date, status)
		VALUES ($1, $2, CURRENT_DATE - 30, CURRENT_DATE - 16, 'borrowed')
	`, bookID, userID)
	require.NoError(t, err)

	resp, err := http.Get(ts.server.URL + "/api/borrowings/overdue")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var overdue []struct {
		BookID int64  `json:"book_id"`
		Title  string `json:"title"`
		Email  string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&overdue))
	require.Len(t, overdue, 1)
	assert.Equal(t, bookID, overdue[0].BookID)
	assert.Equal(t, "Late Book", overdue[0].Title)
	assert.Equal(t, "dora@test.com", overdue[0].Email)
}

func TestSearchAndStats(t *testing.T) {
	ts := setupTestSuite(t)

	ts.addBook(t, "Dune", "9780441172719", 2)
	ts.addBook(t, "Dune Messiah", "9780441172696", 1)
	ts.addBook(t, "Emma", "9780141439587", 1)
	ts.addUser(t, "erin")

	resp, err := http.Get(ts.server.URL + "/api/books/search?q=dune")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var found []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	assert.Len(t, found, 2)

	statsResp, err := http.Get(ts.server.URL + "/api/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()
	require.Equal(t, http.StatusOK, statsResp.StatusCode)

	var summary struct {
		TotalBooks int `json:"total_books"`
		TotalUsers int `json:"total_users"`
	}
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&summary))
	assert.Equal(t, 3, summary.TotalBooks)
	assert.Equal(t, 1, summary.TotalUsers)
}
