package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"odyssee/internal/domain"
)

// entry is one JSON log line. The identifiers the back-office deals in all
// day (market, sale, order, client, stock item) get first-class columns so
// the lines grep cleanly; anything else rides in Fields.
type entry struct {
	TS       string         `json:"ts"`
	Level    string         `json:"level"`
	ReqID    string         `json:"req_id,omitempty"`
	IP       string         `json:"ip,omitempty"`
	Method   string         `json:"method,omitempty"`
	Path     string         `json:"path,omitempty"`
	UserID   string         `json:"user_id,omitempty"`
	Action   string         `json:"action,omitempty"`
	Status   int            `json:"status,omitempty"`
	MarketID string         `json:"market_id,omitempty"`
	SaleID   string         `json:"sale_id,omitempty"`
	OrderID  string         `json:"order_id,omitempty"`
	ClientID string         `json:"client_id,omitempty"`
	StockID  string         `json:"stock_id,omitempty"`
	Err      string         `json:"err,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e.ReqID = rid
		}
		if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
			e.UserID = u.ID
		}
	}
	if err != nil {
		e.Err = err.Error()
	}
	hoistIDs(&e)
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func hoistIDs(e *entry) {
	take := func(key string, dst *string) {
		if v, ok := e.Fields[key].(string); ok {
			*dst = v
			delete(e.Fields, key)
		}
	}
	take("market_id", &e.MarketID)
	take("sale_id", &e.SaleID)
	take("order_id", &e.OrderID)
	take("client_id", &e.ClientID)
	take("stock_id", &e.StockID)
	if len(e.Fields) == 0 {
		e.Fields = nil
	}
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { write("info", c, action, nil, fields) }
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write("audit", c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}
