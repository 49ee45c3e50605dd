package service

import (
	"crypto/sha256"
	"daily_puzzle_backend/internal/config"
	"daily_puzzle_backend/internal/util"
	"encoding/hex"
	"fmt"
	"time"
)

// PlayerIdentity 每次请求推导出的玩家身份
// 账号ID与匿名指纹二选一：Authenticated 为真时只看 UserID，否则只看 Fingerprint。
type PlayerIdentity struct {
	UserID        uint
	Authenticated bool
	Fingerprint   string
	IPAddress     string
	UserAgent     string
}

type IdentityService struct {
	Cfg *config.Config
}

func NewIdentityService(cfg *config.Config) *IdentityService {
	return &IdentityService{Cfg: cfg}
}

// Resolve 把请求级信号归结为单一身份
// 登录身份永远优先，此时不计算指纹；匿名请求取不到来源IP视为环境故障。
func (s *IdentityService) Resolve(claims *util.Claims, ipAddress, userAgent, puzzleID string) (PlayerIdentity, error) {
	if claims != nil {
		return PlayerIdentity{
			UserID:        claims.UserID,
			Authenticated: true,
			IPAddress:     ipAddress,
			UserAgent:     userAgent,
		}, nil
	}

	if ipAddress == "" {
		return PlayerIdentity{}, util.ErrIdentityUnavailable
	}

	return PlayerIdentity{
		Fingerprint: s.Fingerprint(ipAddress, puzzleID),
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
	}, nil
}

// Fingerprint 匿名玩家的当日指纹
// 同一 (IP, 谜题) 当天内稳定，跨天轮换；密钥只进哈希，不出现在输出里。
func (s *IdentityService) Fingerprint(ipAddress, puzzleID string) string {
	return s.fingerprintAt(ipAddress, puzzleID, time.Now().UTC())
}

func (s *IdentityService) fingerprintAt(ipAddress, puzzleID string, day time.Time) string {
	salt := s.dailySaltAt(day)
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s", ipAddress, puzzleID, salt)))
	return hex.EncodeToString(sum[:])[:32]
}

func (s *IdentityService) dailySaltAt(day time.Time) string {
	date := day.Format("2006-01-02")
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", s.Cfg.Fingerprint.Secret, date)))
	return hex.EncodeToString(sum[:])[:16]
}
