package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const (
	walletA = "11111111111111111111111111111111"
	walletB = "4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustUser(t *testing.T, store *Store, wallet string) User {
	t.Helper()
	u, err := store.UpsertUser(context.Background(), wallet)
	if err != nil {
		t.Fatalf("UpsertUser() failed: %v", err)
	}
	return u
}

func mustSession(t *testing.T, store *Store, userID int64) Session {
	t.Helper()
	sess, err := store.CreateSession(context.Background(), userID, Turn{State: []byte(`{"score":0}`)})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.twentysol/test.db")
	if err != nil {
		t.Fatalf("Open() with ~ path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".twentysol", "test.db")); os.IsNotExist(err) {
		t.Error("Database file was not created under the home directory")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	u := mustUser(t, store, walletA)
	sess := mustSession(t, store, u.ID)
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := store.GetSession(ctx, sess.ID); err != nil {
		t.Errorf("session lost after reopen: %v", err)
	}
}

func TestUpsertUser(t *testing.T) {
	store := openTestStore(t)

	u1 := mustUser(t, store, walletA)
	u2 := mustUser(t, store, walletA)
	u3 := mustUser(t, store, walletB)

	if u1.ID != u2.ID {
		t.Errorf("same wallet got different IDs: %d vs %d", u1.ID, u2.ID)
	}
	if u1.ID == u3.ID {
		t.Error("different wallets share an ID")
	}
	if u1.Label() != "1111…" {
		t.Errorf("Label() = %q, want shortened wallet", u1.Label())
	}
}

func TestSetUsername(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	mustUser(t, store, walletA)

	if err := store.SetUsername(ctx, walletA, "tiles"); err != nil {
		t.Fatalf("SetUsername() failed: %v", err)
	}
	u, err := store.UserByWallet(ctx, walletA)
	if err != nil {
		t.Fatalf("UserByWallet() failed: %v", err)
	}
	if u.Label() != "tiles" {
		t.Errorf("Label() = %q, want tiles", u.Label())
	}

	if err := store.SetUsername(ctx, walletB, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetUsername() on unknown wallet = %v, want ErrNotFound", err)
	}
}

func TestCreateAndGetSession(t *testing.T) {
	store := openTestStore(t)
	u := mustUser(t, store, walletA)

	sess := mustSession(t, store, u.ID)

	if sess.ID == "" {
		t.Fatal("session ID is empty")
	}
	if sess.Status != SessionInProgress {
		t.Errorf("Status = %s, want %s", sess.Status, SessionInProgress)
	}
	if sess.Wallet != walletA {
		t.Errorf("Wallet = %q, want %q", sess.Wallet, walletA)
	}
	if string(sess.State) != `{"score":0}` {
		t.Errorf("State = %s", sess.State)
	}
	if !sess.EndedAt.IsZero() {
		t.Error("EndedAt should be zero for a new session")
	}

	_, err := store.GetSession(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession(missing) = %v, want ErrNotFound", err)
	}
}

func TestSaveTurn(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, walletA)
	other := mustUser(t, store, walletB)
	sess := mustSession(t, store, owner.ID)

	turn := Turn{State: []byte(`{"score":8}`), Score: 8, Moves: 3}
	if err := store.SaveTurn(ctx, sess.ID, owner.ID, turn); err != nil {
		t.Fatalf("SaveTurn() failed: %v", err)
	}

	got, err := store.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession() failed: %v", err)
	}
	if got.Score != 8 || got.Moves != 3 || string(got.State) != `{"score":8}` {
		t.Errorf("turn not stored: %+v", got)
	}

	if err := store.SaveTurn(ctx, sess.ID, other.ID, turn); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveTurn() by other user = %v, want ErrNotFound", err)
	}

	if err := store.SaveTurn(ctx, "missing", owner.ID, turn); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveTurn() on missing session = %v, want ErrNotFound", err)
	}

	if _, _, err := store.FinishSession(ctx, sess.ID, 8); err != nil {
		t.Fatalf("FinishSession() failed: %v", err)
	}
	if err := store.SaveTurn(ctx, sess.ID, owner.ID, turn); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("SaveTurn() after finish = %v, want ErrSessionFinished", err)
	}
}

func TestFinishSessionOnce(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, store, walletA)
	sess := mustSession(t, store, u.ID)

	finished, first, err := store.FinishSession(ctx, sess.ID, 2048)
	if err != nil {
		t.Fatalf("FinishSession() failed: %v", err)
	}
	if !first {
		t.Error("first FinishSession() should report the transition")
	}
	if !finished.Finished() || finished.Score != 2048 {
		t.Errorf("unexpected finished session: %+v", finished)
	}

	again, first, err := store.FinishSession(ctx, sess.ID, 4096)
	if err != nil {
		t.Fatalf("second FinishSession() failed: %v", err)
	}
	if first {
		t.Error("second FinishSession() should not report a transition")
	}
	if again.Score != 2048 {
		t.Errorf("second finish overwrote score: %d", again.Score)
	}

	page, err := store.Leaderboard(ctx, 10, "")
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Errorf("expected exactly one score row, got %d", len(page.Entries))
	}

	if _, _, err := store.FinishSession(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("FinishSession(missing) = %v, want ErrNotFound", err)
	}
}

func TestLeaderboardPagination(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, store, walletA)

	// 5 scores with a tie: 500, 400, 300, 300, 100
	for _, score := range []int{300, 100, 500, 300, 400} {
		sess := mustSession(t, store, u.ID)
		if _, _, err := store.FinishSession(ctx, sess.ID, score); err != nil {
			t.Fatalf("FinishSession() failed: %v", err)
		}
	}

	var got []int
	cursor := ""
	pages := 0
	for {
		page, err := store.Leaderboard(ctx, 2, cursor)
		if err != nil {
			t.Fatalf("Leaderboard() failed: %v", err)
		}
		pages++
		for _, e := range page.Entries {
			got = append(got, e.Score)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	want := []int{500, 400, 300, 300, 100}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("leaderboard = %v, want %v", got, want)
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
}

func TestLeaderboardFullLastPage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, store, walletA)

	for _, score := range []int{10, 20} {
		sess := mustSession(t, store, u.ID)
		store.FinishSession(ctx, sess.ID, score)
	}

	page, err := store.Leaderboard(ctx, 2, "")
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if page.NextCursor == "" {
		t.Fatal("a full page should carry a cursor")
	}

	next, err := store.Leaderboard(ctx, 2, page.NextCursor)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(next.Entries) != 0 || next.NextCursor != "" {
		t.Errorf("expected an empty final page, got %+v", next)
	}
}

func TestLeaderboardLabelsAndCursorErrors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, store, walletB)
	store.SetUsername(ctx, walletB, "merger")
	sess := mustSession(t, store, u.ID)
	store.FinishSession(ctx, sess.ID, 64)

	page, err := store.Leaderboard(ctx, 0, "")
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(page.Entries) != 1 || page.Entries[0].User != "merger" {
		t.Errorf("unexpected entries: %+v", page.Entries)
	}
	if page.Entries[0].SessionID != sess.ID {
		t.Errorf("SessionID = %q, want %q", page.Entries[0].SessionID, sess.ID)
	}

	for _, cursor := range []string{"abc", "999"} {
		if _, err := store.Leaderboard(ctx, 5, cursor); !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("Leaderboard(cursor %q) = %v, want ErrInvalidCursor", cursor, err)
		}
	}
}

func TestHighScore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	high, err := store.HighScore(ctx)
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 with no games, got %d", high)
	}

	u := mustUser(t, store, walletA)
	for _, score := range []int{100, 300, 200} {
		sess := mustSession(t, store, u.ID)
		store.FinishSession(ctx, sess.ID, score)
	}

	high, err = store.HighScore(ctx)
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestClaimReward(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, store, walletA)
	sess := mustSession(t, store, u.ID)

	tx := TokenTransaction{
		SessionID: sess.ID,
		UserID:    u.ID,
		Amount:    2,
		BaseUnits: 2_000_000,
	}
	claim, won, err := store.ClaimReward(ctx, tx)
	if err != nil {
		t.Fatalf("ClaimReward() failed: %v", err)
	}
	if !won {
		t.Fatal("first ClaimReward() should win")
	}
	if !claim.Pending() || claim.TxHash != "" || claim.Type != TxTypeMint {
		t.Errorf("unexpected claim: %+v", claim)
	}

	again, won, err := store.ClaimReward(ctx, tx)
	if err != nil {
		t.Fatalf("second ClaimReward() failed: %v", err)
	}
	if won {
		t.Error("second ClaimReward() should not win")
	}
	if again.ID != claim.ID {
		t.Errorf("second claim ID = %d, want existing %d", again.ID, claim.ID)
	}

	got, err := store.ConfirmReward(ctx, claim.ID, "sig")
	if err != nil {
		t.Fatalf("ConfirmReward() failed: %v", err)
	}
	if got.Status != TxConfirmed || got.TxHash != "sig" || got.BaseUnits != 2_000_000 {
		t.Errorf("unexpected confirmed transaction: %+v", got)
	}

	if _, err := store.ConfirmReward(ctx, claim.ID, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ConfirmReward() twice = %v, want ErrNotFound", err)
	}
	if err := store.ReleaseReward(ctx, claim.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReleaseReward() on confirmed = %v, want ErrNotFound", err)
	}

	list, err := store.TokenTransactions(ctx, u.ID)
	if err != nil {
		t.Fatalf("TokenTransactions() failed: %v", err)
	}
	if len(list) != 1 || list[0].TxHash != "sig" {
		t.Errorf("unexpected transactions: %+v", list)
	}

	if _, err := store.SessionTokenTransaction(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionTokenTransaction(missing) = %v, want ErrNotFound", err)
	}
}

func TestReleaseRewardAllowsNewClaim(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, store, walletA)
	sess := mustSession(t, store, u.ID)
	tx := TokenTransaction{SessionID: sess.ID, UserID: u.ID, Amount: 1, BaseUnits: 1_000_000}

	first, _, err := store.ClaimReward(ctx, tx)
	if err != nil {
		t.Fatalf("ClaimReward() failed: %v", err)
	}
	if err := store.ReleaseReward(ctx, first.ID); err != nil {
		t.Fatalf("ReleaseReward() failed: %v", err)
	}
	if _, err := store.SessionTokenTransaction(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("released claim still stored: %v", err)
	}

	second, won, err := store.ClaimReward(ctx, tx)
	if err != nil {
		t.Fatalf("ClaimReward() after release failed: %v", err)
	}
	if !won || second.ID == first.ID {
		t.Errorf("expected a fresh winning claim, got won=%v id=%d", won, second.ID)
	}
	if _, err := store.ConfirmReward(ctx, first.ID, "stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ConfirmReward() of released claim = %v, want ErrNotFound", err)
	}
}

func TestClaimRewardAcrossStores(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	a, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer a.Close()
	b, err := Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer b.Close()

	u := mustUser(t, a, walletA)
	sess := mustSession(t, a, u.ID)
	tx := TokenTransaction{SessionID: sess.ID, UserID: u.ID, Amount: 2, BaseUnits: 2_000_000}

	type result struct {
		won bool
		err error
	}
	results := make(chan result, 20)
	var wg sync.WaitGroup
	for i := range 20 {
		store := a
		if i%2 == 1 {
			store = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, won, err := store.ClaimReward(ctx, tx)
			results <- result{won, err}
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for r := range results {
		if r.err != nil {
			t.Errorf("ClaimReward() failed: %v", r.err)
		}
		if r.won {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
}

func TestStoreBusyTimeout(t *testing.T) {
	store := openTestStore(t)

	var timeout int
	if err := store.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("PRAGMA busy_timeout failed: %v", err)
	}
	if timeout != busyTimeoutMS {
		t.Errorf("busy_timeout = %d, want %d", timeout, busyTimeoutMS)
	}
}

func TestUserSessions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, store, walletA)
	other := mustUser(t, store, walletB)

	first := mustSession(t, store, u.ID)
	second := mustSession(t, store, u.ID)
	mustSession(t, store, other.ID)

	sessions, err := store.UserSessions(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("UserSessions() failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != second.ID || sessions[1].ID != first.ID {
		t.Errorf("sessions not newest first: %s, %s", sessions[0].ID, sessions[1].ID)
	}
}
