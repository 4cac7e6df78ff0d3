package notifier

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/offer"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/logger"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/pkg/errors"
)

// TelegramNotifier implements Notifier using the Telegram Bot API
// (sendPhoto with an HTML caption, sendMessage as text fallback)
type TelegramNotifier struct {
	apiBase string
	token   string
	chatID  string
	client  *http.Client
	log     *logger.Logger
}

var _ Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		apiBase: "https://api.telegram.org",
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 20 * time.Second},
		log:     logger.ForNotifier(),
	}
}

// apiResponse is the envelope every Bot API method returns
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// PublishOffer sends the offer as a photo with an HTML caption. Offers
// without an image fall back to a text message with the same content.
func (n *TelegramNotifier) PublishOffer(o offer.Offer) error {
	caption := Caption(o)

	if o.ImageURL == "" {
		n.log.Debug().Str("asin", o.ASIN).Msg("Offer has no image, sending as text")
		return n.PublishText(caption)
	}

	n.log.Debug().Str("asin", o.ASIN).Int("discount", o.Discount).Msg("Sending offer photo")

	form := url.Values{
		"chat_id":    {n.chatID},
		"photo":      {o.ImageURL},
		"caption":    {caption},
		"parse_mode": {"HTML"},
	}
	return n.call("sendPhoto", form)
}

// PublishText sends a plain HTML-mode message to the channel
func (n *TelegramNotifier) PublishText(text string) error {
	form := url.Values{
		"chat_id":    {n.chatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}
	return n.call("sendMessage", form)
}

// call posts a Bot API method and converts failures into delivery errors
func (n *TelegramNotifier) call(method string, form url.Values) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", n.apiBase, n.token, method)

	resp, err := n.client.PostForm(endpoint, form)
	if err != nil {
		return errors.NewDelivery(method, "telegram request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewDelivery(method, "failed to read telegram response", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.NewDelivery(method, fmt.Sprintf("unexpected telegram response (status %d)", resp.StatusCode), err)
	}
	if !parsed.OK {
		return errors.NewDelivery(method, fmt.Sprintf("telegram rejected the message: %s", parsed.Description), nil)
	}

	return nil
}

// Caption renders the HTML caption for an offer
func Caption(o offer.Offer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>%s</b>\n\n", html.EscapeString(o.Title))
	fmt.Fprintf(&b, "💶 <b>%s</b>\n", html.EscapeString(o.PriceNow))
	fmt.Fprintf(&b, "❌ <s>%s</s>\n", html.EscapeString(o.PriceList))
	fmt.Fprintf(&b, "🎯 Sconto: <b>%d%%</b>\n\n", o.Discount)
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">Apri l'offerta</a>", html.EscapeString(o.URL))
	return b.String()
}
