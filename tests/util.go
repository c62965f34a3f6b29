// Package testutil holds helpers shared by test suites across apps.
package testutil

import (
	"net/mail"
	"time"

	"github.com/trezcool/msaada/core"
)

// NewConfig returns a self-contained configuration for tests; nothing is
// read from the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		Debug:    true,
		TestMode: true,
		Build:    "test",

		AppName:         "Msaada",
		SecretKey:       []byte("pfe+%=9$+c4)te_ya#vdzurrndc!jwmg"),
		FrontendBaseURL: "http://localhost:3000",

		DefaultFromEmail: mail.Address{Name: "Msaada", Address: "noreply@test.local"},
		OpsEmail:         mail.Address{Name: "Support Office", Address: "support-office@test.local"},

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        7 * 24 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			ShutdownTimeout:           5 * time.Second,
		},
		Sweep: core.SweepConfig{
			Interval:     time.Minute,
			UrgentWindow: 6 * time.Hour,
		},
	}
}

type nopLogger struct{}

var _ core.Logger = (*nopLogger)(nil)

// NewLogger returns a logger that drops everything.
func NewLogger() core.Logger { return nopLogger{} }

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
