package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
)

// Discord posts rich embeds to a webhook. Optional channel; NewDiscord
// returns nil when no webhook is configured, which Multi skips.
type Discord struct {
	Webhook string
	Client  *http.Client
}

func NewDiscord(webhook string) *Discord {
	if webhook == "" {
		return nil
	}
	return &Discord{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type discordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Color       int                `json:"color"`
	URL         string             `json:"url,omitempty"`
	Timestamp   string             `json:"timestamp"`
	Fields      []discordField     `json:"fields,omitempty"`
	Thumbnail   *discordAttachment `json:"thumbnail,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordAttachment struct {
	URL string `json:"url"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

func (d *Discord) SendAlert(ctx context.Context, a *domain.ExtinctAlert) error {
	if d == nil || d.Webhook == "" {
		return errors.New("discord disabled")
	}
	embed := discordEmbed{
		Title:       "EXTINCT: " + a.Name,
		Description: "No longer available on market",
		Color:       0xff0000,
		URL:         a.SourceURL,
		Timestamp:   a.ObservedAt.Format(time.RFC3339),
		Fields: []discordField{
			{Name: "Status", Value: "EXTINCT", Inline: true},
			{Name: "Rating", Value: itoa(a.Rating), Inline: true},
		},
	}
	if a.ImageURL != "" {
		embed.Thumbnail = &discordAttachment{URL: a.ImageURL}
	}
	return d.post(ctx, discordPayload{Embeds: []discordEmbed{embed}})
}

func (d *Discord) SendMessage(ctx context.Context, title, text string) error {
	if d == nil || d.Webhook == "" {
		return errors.New("discord disabled")
	}
	return d.post(ctx, discordPayload{Embeds: []discordEmbed{{
		Title:       title,
		Description: text,
		Color:       0x0099ff,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}}})
}

func (d *Discord) post(ctx context.Context, p discordPayload) error {
	body, _ := json.Marshal(p)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, d.Webhook, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.New("discord non-2xx")
	}
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "n/a"
	}
	return strconv.Itoa(n)
}
