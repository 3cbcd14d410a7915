package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Config — настройки Kafka. Переменные: HEAVY_KAFKA_BROKERS, HEAVY_KAFKA_TOPIC. Пустой BROKERS — события выключены.
type Config struct {
	Brokers      string        `envconfig:"BROKERS" default:""` // через запятую, если несколько
	Topic        string        `envconfig:"TOPIC" default:"heavy.computed"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"5s"`
}

// Enabled сообщает, настроен ли брокер.
func (c *Config) Enabled() bool {
	return c != nil && len(c.brokersSlice()) > 0
}

// brokersSlice возвращает список брокеров из строки (через запятую), пустые элементы отбрасываются.
func (c *Config) brokersSlice() []string {
	if c == nil || c.Brokers == "" {
		return nil
	}
	parts := strings.Split(c.Brokers, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Client — конфиг и фабрика продюсера. Подключение к брокеру — при первой записи.
type Client struct {
	cfg *Config
}

// New создаёт клиент по конфигу.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Client{cfg: cfg}
}

// Producer создаёт продюсера для отправки сообщений в топик. После использования вызови Close().
func (c *Client) Producer() *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.cfg.brokersSlice()...),
		Topic:                  c.cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		WriteTimeout:           c.cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return &Producer{w: w}
}
