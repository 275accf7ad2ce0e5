package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
)

const (
	sessionPrefix      = "session:"
	refreshPrefix      = "refresh:"
	userSessionsPrefix = "user_sessions:"
)

type SessionRepo struct {
	client *goredis.Client
}

type sessionPayload struct {
	UserID    int64  `json:"user_id"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

func NewSessionRepo(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Create(ctx context.Context, session authsvc.SessionRecord, refreshToken string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(session.SID) == "" || strings.TrimSpace(refreshToken) == "" || session.UserID <= 0 {
		return authsvc.ErrInvalidInput
	}

	data, err := json.Marshal(sessionPayload{
		UserID:    session.UserID,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal session payload: %w", err)
	}

	ttl := ttlFor(session.ExpiresAt)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.SID), data, ttl)
	pipe.Set(ctx, refreshKey(refreshToken), session.SID, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.SID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create redis session: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetSession(ctx context.Context, sid string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}

	data, err := r.client.Get(ctx, sessionKey(sid)).Bytes()
	if err == goredis.Nil {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("get session: %w", err)
	}

	session, err := parseSession(data)
	if err != nil {
		return authsvc.SessionRecord{}, err
	}
	session.SID = sid
	return session, nil
}

func (r *SessionRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}

	sid, err := r.client.Get(ctx, refreshKey(refreshToken)).Result()
	if err == goredis.Nil {
		return authsvc.SessionRecord{}, authsvc.ErrRefreshNotFound
	}
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("get refresh pointer: %w", err)
	}

	session, err := r.GetSession(ctx, sid)
	if err != nil {
		if err == authsvc.ErrSessionNotFound {
			return authsvc.SessionRecord{}, authsvc.ErrRefreshNotFound
		}
		return authsvc.SessionRecord{}, err
	}

	return session, nil
}

func (r *SessionRepo) RotateRefresh(ctx context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	session, err := r.GetByRefreshToken(ctx, oldRefreshToken)
	if err != nil {
		return err
	}
	if sid != "" && sid != session.SID {
		return authsvc.ErrRefreshNotFound
	}

	data, err := json.Marshal(sessionPayload{
		UserID:    session.UserID,
		Role:      session.Role,
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal session payload: %w", err)
	}

	ttl := ttlFor(expiresAt)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, refreshKey(oldRefreshToken))
	pipe.Set(ctx, refreshKey(newRefreshToken), session.SID, ttl)
	pipe.Set(ctx, sessionKey(session.SID), data, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.SID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}

	return nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context, sid string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(sid) == "" {
		return nil
	}

	session, err := r.GetSession(ctx, sid)
	if err != nil && err != authsvc.ErrSessionNotFound {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sid))
	if session.UserID > 0 {
		pipe.SRem(ctx, userSessionsKey(session.UserID), sid)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return authsvc.ErrInvalidInput
	}

	sids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	for _, sid := range sids {
		if err := r.DeleteSession(ctx, sid); err != nil {
			return err
		}
	}

	if err := r.client.Del(ctx, userSessionsKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete user sessions key: %w", err)
	}

	return nil
}

func parseSession(data []byte) (authsvc.SessionRecord, error) {
	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID <= 0 {
		return authsvc.SessionRecord{}, authsvc.ErrUnauthorized
	}

	return authsvc.SessionRecord{
		UserID:    payload.UserID,
		Role:      payload.Role,
		ExpiresAt: time.Unix(payload.ExpiresAt, 0).UTC(),
	}, nil
}

func ttlFor(expiresAt time.Time) time.Duration {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}

func sessionKey(sid string) string {
	return sessionPrefix + sid
}

func refreshKey(token string) string {
	return refreshPrefix + token
}

func userSessionsKey(userID int64) string {
	return userSessionsPrefix + strconv.FormatInt(userID, 10)
}
