package guardrails

import (
	"regexp"

	"github.com/username/jomkira/backend/src/config"
	"github.com/username/jomkira/backend/src/logger"
)

// ErrCodeMaliciousInput is the machine-readable code for blocked script
// injection attempts.
const ErrCodeMaliciousInput = "MALICIOUS_INPUT_DETECTED"

var maliciousPatterns = []*regexp.Regexp{
	// <script> blocks
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	// javascript: URI scheme
	regexp.MustCompile(`(?i)javascript:`),
	// inline HTML event handlers (onclick=, onmouseover=, ...)
	regexp.MustCompile(`(?i)on\w+=`),
}

// SanitizationCheck blocks script injection attempts in user text. It runs
// earliest in the chain.
type SanitizationCheck struct{}

func NewSanitizationCheck() *SanitizationCheck {
	return &SanitizationCheck{}
}

func (c *SanitizationCheck) Name() string { return "sanitization" }

func (c *SanitizationCheck) Priority() int { return 10 }

func (c *SanitizationCheck) Check(ctx *Context) Result {
	for _, text := range ctx.TextCandidates {
		if text == "" {
			continue
		}
		if isMalicious(text) {
			logger.L.Warn("Malicious input detected by sanitization guardrail")
			return Result{
				Passed:       false,
				ErrorMessage: config.MsgMaliciousInput,
				ErrorCode:    ErrCodeMaliciousInput,
			}
		}
	}
	return Pass()
}

func isMalicious(text string) bool {
	for _, p := range maliciousPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
