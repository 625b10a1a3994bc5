package smtpmail

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/smtp"
	"net/textproto"
	"sync"
	"sync/atomic"
	"time"

	"github.com/knadh/smtppool"
)

const defaultAppName = "Senti-Vox"

// Dispatcher sends OTP mails through a round-robin pool of SMTP relays.
// It implements mailauth.MailDispatcher.
type Dispatcher struct {
	servers ServerList
	appName string
	counter atomic.Uint64

	mu    sync.Mutex
	pools []*smtppool.Pool
}

// NewDispatcher connects a pool per configured server. Servers that fail
// to connect are logged and skipped; at least one pool must come up. An
// empty appName selects the default product name used in mail content.
func NewDispatcher(servers ServerList, appName string) (*Dispatcher, error) {
	if appName == "" {
		appName = defaultAppName
	}

	pools := make([]*smtppool.Pool, 0, len(servers.Servers))
	for _, server := range servers.Servers {
		pool, err := connectToPool(server)
		if err != nil {
			slog.Error("error setting up connection pool",
				slog.String("error", err.Error()),
				slog.String("host", server.Host))
			continue
		}
		pools = append(pools, pool)
	}
	if len(pools) < 1 {
		return nil, errors.New("no smtp server connection in the pool")
	}

	return &Dispatcher{
		servers: servers,
		appName: appName,
		pools:   pools,
	}, nil
}

func connectToPool(server Server) (*smtppool.Pool, error) {
	auth := smtp.PlainAuth(
		"",
		server.AuthData.Username,
		server.AuthData.Password,
		server.Host,
	)
	if server.AuthData.Username == "" && server.AuthData.Password == "" {
		auth = nil
	}

	tlsOpts := &tls.Config{
		InsecureSkipVerify: server.InsecureSkipVerify,
		ServerName:         server.Host,
	}

	return smtppool.New(smtppool.Opt{
		Host:            server.Host,
		Port:            server.Port,
		MaxConns:        server.Connections,
		IdleTimeout:     time.Duration(server.SendTimeout) * time.Second,
		PoolWaitTimeout: time.Duration(server.SendTimeout) * time.Second,
		TLSConfig:       tlsOpts,
		Auth:            auth,
	})
}

// SendOTP implements mailauth.MailDispatcher.
func (d *Dispatcher) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := renderOTPMail(d.appName, code, ttl)
	if err != nil {
		return err
	}

	index := int(d.counter.Add(1) % uint64(len(d.pools)))
	d.mu.Lock()
	pool := d.pools[index]
	d.mu.Unlock()

	msg := smtppool.Email{
		To:      []string{to},
		From:    d.servers.From,
		Sender:  d.servers.Sender,
		ReplyTo: d.servers.ReplyTo,
		Subject: "Your OTP for " + d.appName,
		HTML:    html,
		Headers: textproto.MIMEHeader{},
	}

	server := d.servers.Servers[index%len(d.servers.Servers)]
	if err := pool.Send(msg); err != nil {
		slog.Error("error when trying to send email", slog.String("error", err.Error()))

		// Close and try to reconnect for the next caller.
		replacement, errReconnect := connectToPool(server)
		if errReconnect != nil {
			slog.Error("cannot reconnect pool",
				slog.String("error", errReconnect.Error()),
				slog.String("host", server.Host))
		} else {
			d.mu.Lock()
			d.pools[index].Close()
			d.pools[index] = replacement
			d.mu.Unlock()
		}
		return err
	}

	return nil
}

// Close shuts down every connection pool.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, pool := range d.pools {
		pool.Close()
	}
}
