// Package session runs persisted 2048 games for wallet owners.
// It rebuilds an engine from the stored record on every call, applies the
// request, and writes the new snapshot back. Finishing a game records its
// score and pays the reward at most once.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/twenty-sol/internal/game2048"
	"github.com/vovakirdan/twenty-sol/internal/rewards"
	"github.com/vovakirdan/twenty-sol/internal/storage"
)

// Errors returned by the Service.
var (
	ErrForbidden = errors.New("session: not the owner of this game")
	ErrFinished  = errors.New("session: game already finished")
	ErrMint      = errors.New("session: reward mint failed")
)

// Store is the persistence the Service needs.
type Store interface {
	UpsertUser(ctx context.Context, wallet string) (storage.User, error)
	UserByWallet(ctx context.Context, wallet string) (storage.User, error)
	SetUsername(ctx context.Context, wallet, username string) error

	CreateSession(ctx context.Context, userID int64, initial storage.Turn) (storage.Session, error)
	GetSession(ctx context.Context, id string) (storage.Session, error)
	SaveTurn(ctx context.Context, id string, userID int64, turn storage.Turn) error
	FinishSession(ctx context.Context, id string, finalScore int) (storage.Session, bool, error)
	UserSessions(ctx context.Context, userID int64, limit int) ([]storage.Session, error)

	Leaderboard(ctx context.Context, take int, cursor string) (storage.LeaderboardPage, error)
	HighScore(ctx context.Context) (int, error)

	ClaimReward(ctx context.Context, tx storage.TokenTransaction) (storage.TokenTransaction, bool, error)
	ConfirmReward(ctx context.Context, claimID int64, txHash string) (storage.TokenTransaction, error)
	ReleaseReward(ctx context.Context, claimID int64) error
	TokenTransactions(ctx context.Context, userID int64) ([]storage.TokenTransaction, error)
}

var _ Store = (*storage.Store)(nil)

// Config holds Service settings.
type Config struct {
	Policy   rewards.Policy
	Seed     int64 // 0 = platform random source
	PageSize int   // Leaderboard page size when the caller passes none
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		Policy:   rewards.DefaultPolicy(),
		PageSize: storage.DefaultPageSize,
	}
}

// Game is a stored session together with its engine state.
type Game struct {
	ID        string
	Wallet    string
	State     game2048.State
	Finished  bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Result is the outcome of finishing a game.
type Result struct {
	Game   Game
	Reward *storage.TokenTransaction // nil when no reward was earned
	Minted bool                      // true when this call minted the reward
}

// Service coordinates the engine, the store and the reward minter.
type Service struct {
	config Config
	store  Store
	minter rewards.Minter
	logger *log.Logger
	locks  keyedMutex
}

// NewService creates a Service. A nil logger uses the default logger.
func NewService(cfg Config, store Store, minter rewards.Minter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = storage.DefaultPageSize
	}
	return &Service{
		config: cfg,
		store:  store,
		minter: minter,
		logger: logger.WithPrefix("session"),
	}
}

// source returns the random source for an engine that has made moves moves.
// Seeded sources are offset by the move count so each turn draws fresh values.
func (s *Service) source(moves int) game2048.RandomSource {
	if s.config.Seed == 0 {
		return nil
	}
	return game2048.SeededSource(s.config.Seed + int64(moves))
}

// Start creates a new game for wallet.
func (s *Service) Start(ctx context.Context, wallet string) (Game, error) {
	if err := rewards.ValidateWallet(wallet); err != nil {
		return Game{}, err
	}

	user, err := s.store.UpsertUser(ctx, wallet)
	if err != nil {
		return Game{}, err
	}

	eng := game2048.New(s.source(0))
	turn, err := turnOf(eng)
	if err != nil {
		return Game{}, err
	}

	sess, err := s.store.CreateSession(ctx, user.ID, turn)
	if err != nil {
		return Game{}, err
	}

	s.logger.Info("game started", "session", sess.ID, "wallet", wallet)
	return gameOf(sess)
}

// Get returns a game by session ID.
func (s *Service) Get(ctx context.Context, id string) (Game, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return Game{}, err
	}
	return gameOf(sess)
}

// Move applies dir to the game id owned by wallet.
// A move that does not change the board is not persisted.
func (s *Service) Move(ctx context.Context, wallet, id string, dir game2048.Direction) (Game, error) {
	if !dir.Valid() {
		return Game{}, fmt.Errorf("%w: %q", game2048.ErrInvalidDirection, string(dir))
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	user, sess, err := s.owned(ctx, wallet, id)
	if err != nil {
		return Game{}, err
	}
	if sess.Finished() {
		return Game{}, fmt.Errorf("%w: %s", ErrFinished, id)
	}

	eng, err := s.engineOf(sess)
	if err != nil {
		return Game{}, err
	}

	before := eng.State()
	after, err := eng.Move(dir)
	if err != nil {
		return Game{}, err
	}
	if after.Moves == before.Moves {
		return withState(sess, after), nil
	}

	turn, err := turnOf(eng)
	if err != nil {
		return Game{}, err
	}
	if err := s.store.SaveTurn(ctx, id, user.ID, turn); err != nil {
		if errors.Is(err, storage.ErrSessionFinished) {
			return Game{}, fmt.Errorf("%w: %s", ErrFinished, id)
		}
		return Game{}, err
	}

	s.logger.Debug("move", "session", id, "dir", dir, "score", after.Score, "moves", after.Moves)
	if after.Over() && !before.Over() {
		s.logger.Info("game over", "session", id, "score", after.Score, "max_tile", after.MaxTile())
	}

	return withState(sess, after), nil
}

// Finish ends the game id owned by wallet with the engine's score and pays
// the reward the policy grants. The reward is claimed in the store before it
// is minted, so only one caller across all processes sharing the database
// mints it. Other callers get the stored claim, which stays pending until
// the winner confirms it. A failed mint releases the claim for a retry.
func (s *Service) Finish(ctx context.Context, wallet, id string) (Result, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	user, sess, err := s.owned(ctx, wallet, id)
	if err != nil {
		return Result{}, err
	}

	game, err := gameOf(sess)
	if err != nil {
		return Result{}, err
	}

	if !sess.Finished() {
		finished, first, err := s.store.FinishSession(ctx, id, game.State.Score)
		if err != nil {
			return Result{}, err
		}
		if first {
			s.logger.Info("game finished", "session", id, "score", finished.Score, "moves", finished.Moves)
		}
		if game, err = gameOf(finished); err != nil {
			return Result{}, err
		}
	}

	res := Result{Game: game}

	tokens, ok := s.config.Policy.Amount(game.State.Score)
	if !ok {
		return res, nil
	}
	units := s.config.Policy.BaseUnits(tokens)

	claim, won, err := s.store.ClaimReward(ctx, storage.TokenTransaction{
		SessionID: id,
		UserID:    user.ID,
		Amount:    tokens,
		BaseUnits: units,
		Type:      storage.TxTypeMint,
	})
	if err != nil {
		return res, err
	}
	if !won {
		res.Reward = &claim
		return res, nil
	}

	sig, err := s.minter.Mint(ctx, wallet, units)
	if err != nil {
		s.logger.Error("mint failed", "session", id, "wallet", wallet, "error", err)
		if rerr := s.store.ReleaseReward(context.WithoutCancel(ctx), claim.ID); rerr != nil {
			s.logger.Error("cannot release reward claim", "session", id, "claim", claim.ID, "error", rerr)
		}
		return res, fmt.Errorf("%w: %w", ErrMint, err)
	}

	confirmed, err := s.store.ConfirmReward(context.WithoutCancel(ctx), claim.ID, sig)
	if err != nil {
		s.logger.Error("minted reward not confirmed", "session", id, "claim", claim.ID, "tx", sig, "error", err)
		return res, err
	}

	s.logger.Info("reward minted", "session", id, "wallet", wallet, "tokens", tokens, "tx", sig)
	res.Reward = &confirmed
	res.Minted = true
	return res, nil
}

// Leaderboard returns one page of finished scores.
func (s *Service) Leaderboard(ctx context.Context, take int, cursor string) (storage.LeaderboardPage, error) {
	if take <= 0 {
		take = s.config.PageSize
	}
	return s.store.Leaderboard(ctx, take, cursor)
}

// HighScore returns the best finished score, or 0 when none exists.
func (s *Service) HighScore(ctx context.Context) (int, error) {
	return s.store.HighScore(ctx)
}

// Transactions lists the token transactions of wallet.
func (s *Service) Transactions(ctx context.Context, wallet string) ([]storage.TokenTransaction, error) {
	user, err := s.store.UserByWallet(ctx, wallet)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.TokenTransactions(ctx, user.ID)
}

// Games lists the most recent games of wallet.
func (s *Service) Games(ctx context.Context, wallet string, limit int) ([]storage.Session, error) {
	user, err := s.store.UserByWallet(ctx, wallet)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.UserSessions(ctx, user.ID, limit)
}

// Rename sets the leaderboard display name of wallet.
func (s *Service) Rename(ctx context.Context, wallet, name string) error {
	if err := rewards.ValidateWallet(wallet); err != nil {
		return err
	}
	if _, err := s.store.UpsertUser(ctx, wallet); err != nil {
		return err
	}
	return s.store.SetUsername(ctx, wallet, name)
}

// owned loads session id and checks that wallet owns it.
func (s *Service) owned(ctx context.Context, wallet, id string) (storage.User, storage.Session, error) {
	user, err := s.store.UserByWallet(ctx, wallet)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.User{}, storage.Session{}, fmt.Errorf("%w: %s", ErrForbidden, id)
	}
	if err != nil {
		return storage.User{}, storage.Session{}, err
	}

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return storage.User{}, storage.Session{}, err
	}
	if sess.UserID != user.ID {
		return storage.User{}, storage.Session{}, fmt.Errorf("%w: %s", ErrForbidden, id)
	}
	return user, sess, nil
}

func (s *Service) engineOf(sess storage.Session) (*game2048.Engine, error) {
	st, err := game2048.DecodeState(sess.State)
	if err != nil {
		return nil, fmt.Errorf("session: stored state of %s: %w", sess.ID, err)
	}
	return game2048.Restore(st, s.source(st.Moves)), nil
}

func gameOf(sess storage.Session) (Game, error) {
	st, err := game2048.DecodeState(sess.State)
	if err != nil {
		return Game{}, fmt.Errorf("session: stored state of %s: %w", sess.ID, err)
	}
	g := withState(sess, st)
	g.Finished = sess.Finished()
	return g, nil
}

func withState(sess storage.Session, st game2048.State) Game {
	return Game{
		ID:        sess.ID,
		Wallet:    sess.Wallet,
		State:     st,
		StartedAt: sess.StartedAt,
		EndedAt:   sess.EndedAt,
	}
}

func turnOf(eng *game2048.Engine) (storage.Turn, error) {
	data, err := json.Marshal(eng)
	if err != nil {
		return storage.Turn{}, fmt.Errorf("session: cannot encode state: %w", err)
	}
	st := eng.State()
	return storage.Turn{State: data, Score: st.Score, Moves: st.Moves}, nil
}
