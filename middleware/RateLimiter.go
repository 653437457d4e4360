package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"batterymart/util"
)

type strikeRecord struct {
	count int
	last  time.Time
}

// BanList bans an IP after it hits the rate limit Strikes times.
// Strikes older than the ban duration are forgotten.
type BanList struct {
	mu         sync.Mutex
	strikes    map[string]*strikeRecord
	bans       map[string]time.Time
	maxStrikes int
	banFor     time.Duration
	now        func() time.Time
}

func NewBanList(maxStrikes int, banFor time.Duration) *BanList {
	if maxStrikes <= 0 {
		maxStrikes = 1
	}
	return &BanList{
		strikes:    make(map[string]*strikeRecord),
		bans:       make(map[string]time.Time),
		maxStrikes: maxStrikes,
		banFor:     banFor,
		now:        time.Now,
	}
}

// Strike records a limit hit and reports whether the IP is now banned.
func (b *BanList) Strike(ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	rec, ok := b.strikes[ip]
	if !ok || now.Sub(rec.last) > b.banFor {
		rec = &strikeRecord{}
		b.strikes[ip] = rec
	}
	rec.count++
	rec.last = now

	if rec.count >= b.maxStrikes {
		b.bans[ip] = now.Add(b.banFor)
		delete(b.strikes, ip)
		return true
	}
	return false
}

func (b *BanList) IsBanned(ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	until, ok := b.bans[ip]
	return ok && b.now().Before(until)
}

// Sweep drops expired bans and stale strikes, returning how many entries were removed.
func (b *BanList) Sweep() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var removed int64
	for ip, until := range b.bans {
		if !now.Before(until) {
			delete(b.bans, ip)
			removed++
		}
	}
	for ip, rec := range b.strikes {
		if now.Sub(rec.last) > b.banFor {
			delete(b.strikes, ip)
			removed++
		}
	}
	return removed
}

// VerificationRateLimiter limits provider-backed routes per client IP.
// Every lookup is billed by the provider, so repeat offenders are banned for cfg.BanDuration.
func VerificationRateLimiter(cfg util.RateLimitConfig, bans *BanList, logger *zap.Logger) fiber.Handler {
	limit := limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			ip := c.IP()
			if bans.Strike(ip) {
				logger.Warn("ip banned for exceeding verification rate limit",
					zap.String("ip", ip), zap.Duration("ban", cfg.BanDuration))
				return ipBanned(c, cfg.BanDuration)
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many verification requests, please slow down",
			})
		},
	})

	return func(c *fiber.Ctx) error {
		if bans.IsBanned(c.IP()) {
			return ipBanned(c, cfg.BanDuration)
		}
		return limit(c)
	}
}

func ipBanned(c *fiber.Ctx, d time.Duration) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "ip banned",
		"message": "your IP has been temporarily banned for exceeding rate limits (" + d.String() + ")",
	})
}
