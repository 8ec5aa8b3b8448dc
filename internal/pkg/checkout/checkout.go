// Package checkout builds hosted checkout sessions: it validates the
// requested items against the pricing catalog, persists an order, and creates
// the processor preference carrying the metadata the webhook reconciler needs.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/deceroacien/backend/app/models"
	"github.com/deceroacien/backend/app/repository"
	"github.com/deceroacien/backend/internal/pkg/catalog"
	"github.com/deceroacien/backend/internal/pkg/env"
	"github.com/deceroacien/backend/internal/pkg/grantlink"
	"github.com/deceroacien/backend/internal/pkg/mercadopago"
	"gorm.io/gorm"
)

var ErrInvalidItems = errors.New("invalid_items")

const statementDescriptor = "DE CERO A CIEN"

// Item is one entry of a checkout request: either a bare SKU string looked up
// in the catalog, or a fully specified inline item.
type Item struct {
	SKU       string  `json:"sku,omitempty"`
	Title     string  `json:"title,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	Quantity  int     `json:"quantity,omitempty"`
}

// UnmarshalJSON accepts both the legacy shorthand ("course.pmv") and the
// object form.
func (it *Item) UnmarshalJSON(data []byte) error {
	var sku string
	if err := json.Unmarshal(data, &sku); err == nil {
		*it = Item{SKU: sku}
		return nil
	}
	type alias Item
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*it = Item(obj)
	return nil
}

// UserRef identifies the buyer, when known. ID is the identity-provider
// subject; both fields are optional for guest checkouts.
type UserRef struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// Request is the body of a session-creation call.
type Request struct {
	Items    []Item                 `json:"items"`
	User     UserRef                `json:"user"`
	ReturnTo string                 `json:"returnTo,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Session is the created checkout session handed back to the front-end.
type Session struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// SessionCreator is the slice of the processor client the builder needs.
type SessionCreator interface {
	CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.PreferenceResponse, error)
}

// Service builds checkout sessions.
type Service struct {
	processor SessionCreator
	// fallback repeats the call without the optional integrator header;
	// some processor accounts reject the header outright.
	fallback SessionCreator

	catalog *catalog.Catalog
	orders  repository.OrderRepository
	signer  *grantlink.Signer

	siteBaseURL string
	apiBaseURL  string

	now func() time.Time
}

// NewService wires the builder from explicit collaborators.
func NewService(client *mercadopago.Client, cat *catalog.Catalog, orders repository.OrderRepository, signer *grantlink.Signer, siteBaseURL, apiBaseURL string) *Service {
	s := &Service{
		processor:   client,
		catalog:     cat,
		orders:      orders,
		signer:      signer,
		siteBaseURL: strings.TrimRight(siteBaseURL, "/"),
		apiBaseURL:  strings.TrimRight(apiBaseURL, "/"),
		now:         time.Now,
	}
	if client != nil && client.IntegratorID != "" {
		s.fallback = client.WithoutIntegrator()
	}
	return s
}

// NewServiceFromEnv wires the builder from environment configuration.
func NewServiceFromEnv(db *gorm.DB) (*Service, error) {
	cat, err := catalog.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	site := env.GetEnv("MP_BASE_URL", "https://deceroacien.app")
	api := env.GetEnv("API_BASE_URL", site)
	return NewService(
		mercadopago.NewClientFromEnv(),
		cat,
		repository.NewOrderRepository(db),
		grantlink.NewSignerFromEnv(),
		site,
		api,
	), nil
}

// normalized is an item resolved against the catalog.
type normalized struct {
	item        mercadopago.PreferenceItem
	sku         string
	entitlement string
}

// CreateSession validates items, persists the order and creates the processor
// session. A bare SKU that is not in the catalog fails the whole request with
// ErrInvalidItems before any order row is written.
func (s *Service) CreateSession(ctx context.Context, req Request) (*Session, error) {
	if len(req.Items) == 0 {
		return nil, ErrInvalidItems
	}

	items, total, err := s.normalizeItems(req.Items)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.User.Email))
	subject := strings.TrimSpace(req.User.ID)

	order, err := s.createOrder(items, total, email, req.Metadata)
	if err != nil {
		return nil, err
	}

	prefReq := s.buildPreference(items, order, subject, email, req.ReturnTo)
	pref, err := s.createPreference(ctx, prefReq)
	if err != nil {
		return nil, err
	}

	if err := s.orders.MarkPending(order.ID, pref.ID); err != nil {
		// The session exists either way; the webhook tolerates a stale order.
		log.Printf("checkout: marking order %d pending failed: %v", order.ID, err)
	}

	return &Session{ID: pref.ID, InitPoint: pref.InitPoint, SandboxInitPoint: pref.SandboxInitPoint}, nil
}

func (s *Service) normalizeItems(raw []Item) ([]normalized, float64, error) {
	currency := s.catalog.Currency
	out := make([]normalized, 0, len(raw))
	total := 0.0

	for _, it := range raw {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		switch {
		case strings.TrimSpace(it.SKU) != "":
			sku := strings.TrimSpace(it.SKU)
			def, ok := s.catalog.Lookup(sku)
			if !ok {
				return nil, 0, fmt.Errorf("%w: unknown sku %q", ErrInvalidItems, sku)
			}
			key, _ := s.catalog.EntitlementForSKU(sku)
			out = append(out, normalized{
				item: mercadopago.PreferenceItem{
					Title:       def.Title,
					Description: sku,
					Quantity:    qty,
					UnitPrice:   def.UnitPrice,
					CurrencyID:  currency,
				},
				sku:         sku,
				entitlement: key,
			})
			total += def.UnitPrice * float64(qty)
		case strings.TrimSpace(it.Title) != "" && it.UnitPrice > 0 && strings.TrimSpace(it.Currency) != "":
			// Inline items are informational: they carry no entitlement.
			out = append(out, normalized{
				item: mercadopago.PreferenceItem{
					Title:      strings.TrimSpace(it.Title),
					Quantity:   qty,
					UnitPrice:  it.UnitPrice,
					CurrencyID: strings.ToUpper(strings.TrimSpace(it.Currency)),
				},
			})
			total += it.UnitPrice * float64(qty)
		default:
			return nil, 0, fmt.Errorf("%w: item needs a sku or title+unit_price+currency", ErrInvalidItems)
		}
	}
	return out, total, nil
}

func (s *Service) createOrder(items []normalized, total float64, email string, metadata map[string]interface{}) (*models.Order, error) {
	prefItems := make([]mercadopago.PreferenceItem, len(items))
	for i, n := range items {
		prefItems[i] = n.item
	}
	itemsJSON, err := json.Marshal(prefItems)
	if err != nil {
		return nil, err
	}
	metaJSON := ""
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, err
		}
		metaJSON = string(raw)
	}

	order := &models.Order{
		Email:        email,
		ItemsJSON:    string(itemsJSON),
		Total:        total,
		Currency:     s.catalog.Currency,
		Status:       models.OrderStatusCreated,
		MetadataJSON: metaJSON,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) buildPreference(items []normalized, order *models.Order, subject, email, returnTo string) mercadopago.PreferenceRequest {
	prefItems := make([]mercadopago.PreferenceItem, len(items))
	entitlements := make([]string, 0, len(items))
	for i, n := range items {
		prefItems[i] = n.item
		if n.entitlement != "" {
			entitlements = append(entitlements, n.entitlement)
		}
	}

	externalRef := email
	if externalRef == "" {
		externalRef = subject
	}
	if externalRef == "" {
		externalRef = "anonymous"
	}

	metadata := map[string]interface{}{
		mercadopago.MetadataEntitlements: entitlements,
		mercadopago.MetadataOrderID:      order.ID,
	}
	if subject != "" {
		metadata[mercadopago.MetadataUserSubject] = subject
	}
	if email != "" {
		metadata[mercadopago.MetadataUserEmail] = email
	}
	if returnTo != "" {
		metadata["return_to"] = returnTo
	}

	return mercadopago.PreferenceRequest{
		Items:               prefItems,
		BackURLs:            s.backURLs(entitlements, externalRef),
		AutoReturn:          "approved",
		NotificationURL:     s.apiBaseURL + "/api/mp/webhook",
		StatementDescriptor: statementDescriptor,
		ExternalReference:   externalRef,
		Metadata:            metadata,
	}
}

// backURLs builds the post-checkout redirects. The success URL carries a
// short-lived signed grant so the portal can unlock access optimistically
// while the webhook does the authoritative granting.
func (s *Service) backURLs(entitlements []string, ref string) *mercadopago.BackURLs {
	failure := s.siteBaseURL + "/academy-fases/index.html"
	success := s.siteBaseURL + "/portal-alumno.html"
	if len(entitlements) > 0 {
		grant := entitlements[0]
		ts := s.now().UnixMilli()
		q := url.Values{}
		q.Set("grant", grant)
		q.Set("t", fmt.Sprintf("%d", ts))
		q.Set("ref", ref)
		q.Set("sig", s.signer.Sign(grant, ts, ref))
		success += "?" + q.Encode()
	}
	return &mercadopago.BackURLs{Success: success, Pending: failure, Failure: failure}
}

func (s *Service) createPreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.PreferenceResponse, error) {
	pref, err := s.processor.CreatePreference(ctx, req)
	if err == nil {
		return pref, nil
	}
	if s.fallback != nil && mercadopago.IsAuthError(err) {
		log.Printf("checkout: preference creation rejected with integrator header, retrying without it: %v", err)
		return s.fallback.CreatePreference(ctx, req)
	}
	return nil, err
}
