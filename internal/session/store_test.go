package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shamell/trustgate/internal/mock"
	"github.com/shamell/trustgate/internal/store"
	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const opaqueToken = "0123456789abcdef0123456789abcdef"

func TestStoreResolver_Resolve(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	tests := []struct {
		name     string
		token    string
		stored   models.StoredSession
		repoErr  error
		lookup   bool
		wantAcc  string
		wantErr  error
		wantWrap bool
	}{
		{
			name:    "active session",
			token:   opaqueToken,
			stored:  models.StoredSession{AccountID: "acc-1", ExpiresAt: now.Add(time.Hour)},
			lookup:  true,
			wantAcc: "acc-1",
		},
		{
			name:    "uppercase token is normalised",
			token:   "  0123456789ABCDEF0123456789ABCDEF ",
			stored:  models.StoredSession{AccountID: "acc-1", ExpiresAt: now.Add(time.Hour)},
			lookup:  true,
			wantAcc: "acc-1",
		},
		{name: "short token", token: "abc", wantErr: ErrNoSession},
		{name: "non-hex token", token: "zz23456789abcdef0123456789abcdef", wantErr: ErrMalformedToken},
		{
			name:    "expired",
			token:   opaqueToken,
			stored:  models.StoredSession{AccountID: "acc-1", ExpiresAt: now},
			lookup:  true,
			wantErr: ErrNoSession,
		},
		{
			name:    "revoked",
			token:   opaqueToken,
			stored:  models.StoredSession{AccountID: "acc-1", ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked},
			lookup:  true,
			wantErr: ErrNoSession,
		},
		{
			name:    "unknown",
			token:   opaqueToken,
			repoErr: store.ErrSessionNotFound,
			lookup:  true,
			wantErr: ErrNoSession,
		},
		{
			name:     "database failure",
			token:    opaqueToken,
			repoErr:  store.ErrScanningRow,
			lookup:   true,
			wantErr:  store.ErrScanningRow,
			wantWrap: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock.NewMockSessionRepository(ctrl)
			if tt.lookup {
				repo.EXPECT().
					GetByTokenHash(gomock.Any(), utils.Fingerprint(opaqueToken)).
					Return(tt.stored, tt.repoErr)
			}

			r := NewStoreResolver(repo)
			r.now = func() time.Time { return now }

			sess, err := r.Resolve(context.Background(), tt.token)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantWrap {
					assert.False(t, errors.Is(err, ErrNoSession))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAcc, sess.AccountID)
		})
	}
}

func TestNormalizeOpaqueToken(t *testing.T) {
	got, ok := normalizeOpaqueToken(" ABCDEF0123456789abcdef0123456789 ")
	require.True(t, ok)
	assert.Equal(t, "abcdef0123456789abcdef0123456789", got)

	for _, bad := range []string{"", "abc", opaqueToken + "0", "g123456789abcdef0123456789abcdef"} {
		_, ok = normalizeOpaqueToken(bad)
		assert.False(t, ok, bad)
	}
}
