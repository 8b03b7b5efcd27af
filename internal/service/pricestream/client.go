package pricestream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"CryptoBooster/internal/domain/models"
	drepo "CryptoBooster/internal/domain/repository"
	applogger "CryptoBooster/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a PriceStream backed by a Finnhub-style trade WebSocket.
// symbolMap translates stream symbols (e.g. "BINANCE:BTCUSDT") to the ticker
// symbols positions are keyed by (e.g. "BTC"); unmapped symbols pass through.
type Client struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	symbolMap      map[string]string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

func New(apiKey, websocketURL string, symbols []string, symbolMap map[string]string, reconnectDelay, pingInterval time.Duration, lgr *applogger.Logger) drepo.PriceStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		symbolMap:      symbolMap,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         lgr,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("pricestream connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Info("pricestream connected", applogger.String("url", c.websocketURL))
	}
	return nil
}

// Subscribe subscribes to the configured stream symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	conn, connected := c.conn, c.connected
	c.mu.Unlock()
	if conn == nil || !connected {
		return fmt.Errorf("pricestream not connected")
	}
	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
	}
	if c.logger != nil {
		c.logger.Info("pricestream subscribed", applogger.Int("symbols", len(c.symbols)))
	}
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Read streams price ticks and errors until the connection drops or ctx ends.
func (c *Client) Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error) {
	ticks := make(chan *models.PriceTick, 1024)
	errs := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				conn := c.conn
				c.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				c.mu.Lock()
				conn := c.conn
				c.mu.Unlock()
				if conn == nil {
					errs <- fmt.Errorf("pricestream conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("pricestream read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					continue // non-trade frame
				}
				if m.Type != "trade" {
					continue
				}
				for _, d := range m.Data {
					tick := &models.PriceTick{Symbol: c.mapSymbol(d.S), Price: d.P, Timestamp: d.T}
					select {
					case ticks <- tick:
					default:
						// drop on backpressure; only the latest price matters
					}
				}
			}
		}
	}()

	return ticks, errs
}

func (c *Client) mapSymbol(s string) string {
	if mapped, ok := c.symbolMap[s]; ok {
		return mapped
	}
	return s
}

// Reconnect closes and reconnects after the configured delay.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
