package server

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StoreDriver = config.StoreBunt
	c.BuntPath = ":memory:"
	c.Mailer = config.MailerLog
	c.BcryptCost = bcrypt.MinCost
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.AdminAddr = "127.0.0.1:0"
	c.PurgeInterval = 10 * time.Millisecond
	return c
}

func init() {
	logOutput = io.Discard
}

func TestNewApp_Bunt(t *testing.T) {
	app, err := NewApp(testConfig())
	require.NoError(t, err)
	defer app.store.Close()

	assert.IsType(t, ratelimit.NopLimiter{}, app.limiter)
	assert.NoError(t, app.store.Ping(context.Background()))
}

func TestNewApp_UnknownStore(t *testing.T) {
	c := testConfig()
	c.StoreDriver = "mysql"

	_, err := NewApp(c)
	assert.Error(t, err)
}

func TestNewApp_BadRedisURL(t *testing.T) {
	c := testConfig()
	c.RedisURL = "not a url"

	_, err := NewApp(c)
	assert.ErrorContains(t, err, "rate limiter init error")
}

func TestNewSender(t *testing.T) {
	c := testConfig()

	c.Mailer = config.MailerSMTP
	s, err := newSender(context.Background(), c, nil)
	require.NoError(t, err)
	assert.IsType(t, &notify.SMTPSender{}, s)

	c.Mailer = "pigeon"
	_, err = newSender(context.Background(), c, nil)
	assert.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
