package application_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-catalog-api/internal/application"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-catalog-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/mailer"
)

const testSecret = "test-secret"

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body)
	return p.err
}

// brokenUsers simulates an unreachable database.
type brokenUsers struct{ findErr, insertErr error }

func (b brokenUsers) FindByUsername(context.Context, string) (*entity.User, error) {
	if b.findErr != nil {
		return nil, b.findErr
	}
	return nil, repository.ErrNotFound
}

func (b brokenUsers) Insert(context.Context, *entity.User) error { return b.insertErr }

type authFixture struct {
	users  *memory.UserRepository
	events *fakePublisher
	svc    *application.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := memory.NewUserRepository()
	events := &fakePublisher{}
	svc := application.NewAuthService(
		users,
		helpers.NewPasswordHasher(bcrypt.MinCost),
		helpers.NewJWTManager(testSecret, "test", 30*24*time.Hour),
		events,
		helpers.NewDiscardLogger(),
	)
	return &authFixture{users: users, events: events, svc: svc}
}

func TestSignup_Success(t *testing.T) {
	f := newAuthFixture(t)

	u, err := f.svc.Signup(context.Background(), application.SignupInput{Username: "alice", Email: "a@x.com", Password: "p@ss1"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "p@ss1", u.PasswordHash)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$2"))

	require.Len(t, f.events.jobs, 1)
	job, ok := f.events.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", job.To)
	assert.Equal(t, "welcome", job.Template)
	assert.Equal(t, "alice", job.Data["Username"])
}

func TestSignup_DuplicateUsernameLeavesRecordUntouched(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Signup(ctx, application.SignupInput{Username: "alice", Email: "a@x.com", Password: "p@ss1"})
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, application.SignupInput{Username: "alice", Email: "other@x.com", Password: "different"})
	assert.ErrorIs(t, err, application.ErrDuplicateUser)

	stored, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, first.PasswordHash, stored.PasswordHash)
	assert.Equal(t, 1, f.users.Count())
	assert.Len(t, f.events.jobs, 1)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, application.SignupInput{Username: "alice", Email: "a@x.com", Password: "p@ss1"})
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, application.SignupInput{Username: "bob", Email: " A@X.com ", Password: "p@ss2"})
	assert.ErrorIs(t, err, application.ErrDuplicateUser)
	assert.Equal(t, 1, f.users.Count())
}

func TestSignup_InvalidInput(t *testing.T) {
	f := newAuthFixture(t)

	for _, in := range []application.SignupInput{
		{Username: "", Email: "a@x.com", Password: "p"},
		{Username: "   ", Email: "a@x.com", Password: "p"},
		{Username: "alice", Email: "", Password: "p"},
		{Username: "alice", Email: "a@x.com", Password: ""},
	} {
		_, err := f.svc.Signup(context.Background(), in)
		assert.ErrorIs(t, err, application.ErrInvalidInput)
	}
	assert.Equal(t, 0, f.users.Count())
}

func TestSignup_PasswordOverBcryptLimitIsInvalidInput(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for _, pw := range []string{strings.Repeat("x", 73), strings.Repeat("é", 40)} {
		_, err := f.svc.Signup(ctx, application.SignupInput{Username: "alice", Email: "a@x.com", Password: pw})
		assert.ErrorIs(t, err, application.ErrInvalidInput)
	}
	assert.Equal(t, 0, f.users.Count())
	assert.Empty(t, f.events.jobs)

	// 36 two-byte runes is exactly 72 bytes
	_, err := f.svc.Signup(ctx, application.SignupInput{Username: "alice", Email: "a@x.com", Password: strings.Repeat("é", 36)})
	require.NoError(t, err)
}

func TestSignup_StoreUnavailable(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	hasher := helpers.NewPasswordHasher(bcrypt.MinCost)
	jwt := helpers.NewJWTManager(testSecret, "test", time.Hour)

	svc := application.NewAuthService(brokenUsers{findErr: boom}, hasher, jwt, nil, nil)
	_, err := svc.Signup(context.Background(), application.SignupInput{Username: "alice", Email: "a@x.com", Password: "p"})
	assert.ErrorIs(t, err, application.ErrStoreUnavailable)

	svc = application.NewAuthService(brokenUsers{insertErr: boom}, hasher, jwt, nil, nil)
	_, err = svc.Signup(context.Background(), application.SignupInput{Username: "alice", Email: "a@x.com", Password: "p"})
	assert.ErrorIs(t, err, application.ErrStoreUnavailable)

	// the store's own uniqueness check wins a race the lookup missed
	svc = application.NewAuthService(brokenUsers{insertErr: repository.ErrDuplicateKey}, hasher, jwt, nil, nil)
	_, err = svc.Signup(context.Background(), application.SignupInput{Username: "alice", Email: "a@x.com", Password: "p"})
	assert.ErrorIs(t, err, application.ErrDuplicateUser)
}

func TestSignup_PublishFailureDoesNotFailSignup(t *testing.T) {
	f := newAuthFixture(t)
	f.events.err = errors.New("amqp closed")

	_, err := f.svc.Signup(context.Background(), application.SignupInput{Username: "alice", Email: "a@x.com", Password: "p@ss1"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.users.Count())
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u, err := f.svc.Signup(ctx, application.SignupInput{Username: "alice", Email: "a@x.com", Password: "p@ss1"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		res, err := f.svc.Login(ctx, "alice", "wrong")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	})

	t.Run("unknown user is indistinguishable", func(t *testing.T) {
		res, err := f.svc.Login(ctx, "mallory", "p@ss1")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	})

	t.Run("usernames are case-sensitive by default", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "ALICE", "p@ss1")
		assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		res, err := f.svc.Login(ctx, "alice", "p@ss1")
		require.NoError(t, err)
		assert.Equal(t, u.ID, res.UserID)
		assert.NotEmpty(t, res.Token)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), res.ExpiresAt, time.Minute)

		claims, err := f.svc.Authorize(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
	})
}

func TestLogin_CaseInsensitiveOption(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.CaseInsensitiveUsernames = true
	ctx := context.Background()

	u, err := f.svc.Signup(ctx, application.SignupInput{Username: "Alice", Email: "a@x.com", Password: "p@ss1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = f.svc.Signup(ctx, application.SignupInput{Username: "ALICE", Email: "b@x.com", Password: "p@ss1"})
	assert.ErrorIs(t, err, application.ErrDuplicateUser)

	res, err := f.svc.Login(ctx, "aLiCe", "p@ss1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)
}

func TestLogin_StoreUnavailable(t *testing.T) {
	svc := application.NewAuthService(
		brokenUsers{findErr: errors.New("timeout")},
		helpers.NewPasswordHasher(bcrypt.MinCost),
		helpers.NewJWTManager(testSecret, "test", time.Hour),
		nil, nil,
	)
	_, err := svc.Login(context.Background(), "alice", "p")
	assert.ErrorIs(t, err, application.ErrStoreUnavailable)
}

func TestAuthorize(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Authorize(ctx, "")
	assert.ErrorIs(t, err, application.ErrTokenMissing)

	_, err = f.svc.Authorize(ctx, "garbage")
	assert.ErrorIs(t, err, application.ErrInvalidToken)

	expired := helpers.NewJWTManager(testSecret, "test", -time.Minute)
	tok, _, err := expired.Issue("u1")
	require.NoError(t, err)
	claims, err := f.svc.Authorize(ctx, tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, application.ErrInvalidToken)

	foreign := helpers.NewJWTManager("other-secret", "test", time.Hour)
	tok, _, err = foreign.Issue("u1")
	require.NoError(t, err)
	_, err = f.svc.Authorize(ctx, tok)
	assert.ErrorIs(t, err, application.ErrInvalidToken)
}
