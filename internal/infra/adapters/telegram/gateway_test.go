//go:build !integration

package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/config"
	"telegram-menu-builder/internal/domain"
)

type countingGate struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGate) Acquire() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return 0
}

type apiCall struct {
	token  string
	method string
	form   map[string]string
}

// fakeTelegram answers like the Bot API for a fixed set of known tokens.
type fakeTelegram struct {
	mu    sync.Mutex
	calls []apiCall
	known map[string]bool
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// path: /bot<token>/<method>
	rest := strings.TrimPrefix(r.URL.Path, "/bot")
	i := strings.LastIndex(rest, "/")
	token, method := rest[:i], rest[i+1:]
	_ = r.ParseForm()
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{token: token, method: method, form: form})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !f.known[token] {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
		return
	}
	switch method {
	case "getMe":
		io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"b","username":"b_bot"}}`)
	case "sendMessage":
		if form["chat_id"] == "404" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":%s,"type":"private"},"text":"x"}}`, form["chat_id"])
	case "setWebhook":
		io.WriteString(w, `{"ok":true,"result":true,"description":"Webhook was set"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func (f *fakeTelegram) last() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestGateway(t *testing.T) (*Gateway, *fakeTelegram, *countingGate) {
	t.Helper()
	fake := &fakeTelegram{known: map[string]bool{"123:abc": true}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	gate := &countingGate{}
	logger := zerolog.Nop()
	gw := NewGateway(config.BotConfig{APIEndpoint: srv.URL + "/bot%s/%s"}, gate, srv.Client(), &logger)
	return gw, fake, gate
}

func TestGateway_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("should send a one-label-per-row reply keyboard", func(t *testing.T) {
		gw, fake, gate := newTestGateway(t)
		if err := gw.SendMessage(ctx, "123:abc", 5, "Main menu", []string{"Foo", "Settings"}); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
		c := fake.last()
		if c.token != "123:abc" || c.method != "sendMessage" {
			t.Fatalf("unexpected call %+v", c)
		}
		if c.form["text"] != "Main menu" || c.form["chat_id"] != "5" {
			t.Errorf("unexpected form %v", c.form)
		}
		kb := c.form["reply_markup"]
		if !strings.Contains(kb, `[{"text":"Foo"}],[{"text":"Settings"}]`) {
			t.Errorf("expected one button per row, got %s", kb)
		}
		if !strings.Contains(kb, `"resize_keyboard":true`) {
			t.Errorf("expected resized keyboard, got %s", kb)
		}
		if gate.calls != 1 {
			t.Errorf("expected one gate acquisition, got %d", gate.calls)
		}
	})

	t.Run("should omit markup for a nil keyboard", func(t *testing.T) {
		gw, fake, _ := newTestGateway(t)
		if err := gw.SendMessage(ctx, "123:abc", 5, "step", nil); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
		if _, ok := fake.last().form["reply_markup"]; ok {
			t.Error("reply_markup must not be sent")
		}
	})

	t.Run("should report a rejected send as a delivery failure", func(t *testing.T) {
		gw, _, _ := newTestGateway(t)
		err := gw.SendMessage(ctx, "123:abc", 404, "hi", nil)
		if !errors.Is(err, domain.ErrDeliveryFailed) {
			t.Fatalf("expected ErrDeliveryFailed, got %v", err)
		}
	})

	t.Run("should not call out with a cancelled context", func(t *testing.T) {
		gw, fake, gate := newTestGateway(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := gw.SendMessage(cctx, "123:abc", 5, "hi", nil); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(fake.calls) != 0 || gate.calls != 0 {
			t.Error("no call may be made")
		}
	})
}

func TestGateway_GetMe(t *testing.T) {
	ctx := context.Background()
	gw, fake, _ := newTestGateway(t)

	ok, err := gw.GetMe(ctx, "123:abc")
	if err != nil || !ok {
		t.Errorf("expected valid bot, got ok=%v err=%v", ok, err)
	}

	ok, err = gw.GetMe(ctx, "999:nope")
	if err != nil || ok {
		t.Errorf("expected rejected credential without error, got ok=%v err=%v", ok, err)
	}

	before := len(fake.calls)
	ok, err = gw.GetMe(ctx, "not a token")
	if err != nil || ok {
		t.Errorf("expected malformed credential rejected, got ok=%v err=%v", ok, err)
	}
	if len(fake.calls) != before {
		t.Error("malformed credential must not reach telegram")
	}

	for i := 0; i < 5; i++ {
		gw.GetMe(ctx, fmt.Sprintf("%d:guess", 1000+i))
	}
	gw.mu.Lock()
	cached := len(gw.bots)
	gw.mu.Unlock()
	if cached != 0 {
		t.Errorf("verification must not cache clients, got %d", cached)
	}
}

func TestGateway_SetWebhook(t *testing.T) {
	ctx := context.Background()
	gw, fake, _ := newTestGateway(t)

	if err := gw.SetWebhook(ctx, "123:abc", "https://bots.example.com/webhook/123:abc"); err != nil {
		t.Fatalf("SetWebhook: %v", err)
	}
	c := fake.last()
	if c.method != "setWebhook" || c.form["url"] != "https://bots.example.com/webhook/123:abc" {
		t.Errorf("unexpected call %+v", c)
	}

	if err := gw.SetWebhook(ctx, "999:nope", "https://bots.example.com/webhook/999:nope"); !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Errorf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestGateway_ReusesClientPerCredential(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	if gw.bot("123:abc") != gw.bot("123:abc") {
		t.Error("expected cached client")
	}
	if gw.bot("123:abc") == gw.bot("456:def") {
		t.Error("credentials must not share a client")
	}
}
