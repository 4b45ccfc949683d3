// Package render turns resolved landing pages into HTML documents.
package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"creator-funnel/internal/dto"
	"creator-funnel/internal/pageid"
)

const (
	defaultCreatorName = "Creator"
	defaultBio         = "Welcome to my creator page!"
	defaultImage       = "https://via.placeholder.com/150x150/667eea/ffffff?text=Creator"
	defaultCurrency    = "Tsh"
)

var defaultPrice = decimal.NewFromInt(2000)

var ErrUnknownTemplate = errors.New("template not found")

//go:embed templates/*.html
var files embed.FS

var catalog = []dto.TemplateInfo{
	{ID: pageid.TemplateMinimal, Name: "Minimal Creator", Description: "Clean, simple design focused on content"},
	{ID: pageid.TemplateModern, Name: "Premium Video Feed", Description: "YouTube-like video feed with subscription gating"},
	{ID: pageid.TemplateVideoFeed, Name: "Video Feed", Description: "Grid-style video feed optimized for mobile"},
	{ID: pageid.TemplateJose, Name: "JOSE Dating", Description: "Dating profiles with payment integration"},
	{ID: pageid.TemplateBusinessServices, Name: "Business Services", Description: "Professional business services in Swahili"},
	{ID: pageid.TemplateBetting, Name: "Football Betting", Description: "Modern football betting platform with live matches"},
	{ID: pageid.TemplateBusinessServicesPro, Name: "Business Services Pro", Description: "Enhanced professional business services in Swahili"},
}

// Data is the per-page input of a render.
type Data struct {
	PageID             string
	CreatorID          string
	CreatorName        string
	CreatorBio         string
	CreatorImage       string
	Price              decimal.Decimal
	Currency           string
	SuccessRedirectURL string
	FailureRedirectURL string
}

type view struct {
	Data
	Template dto.TemplateInfo
}

type Renderer struct {
	page *template.Template
}

func New() (*Renderer, error) {
	page, err := template.ParseFS(files, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Renderer{page: page}, nil
}

// Render implements echo.Renderer. name is a template id and data must be a Data.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	switch d := data.(type) {
	case Data:
		return r.Page(w, name, d)
	case *Data:
		return r.Page(w, name, *d)
	}
	return fmt.Errorf("render %s: unsupported data %T", name, data)
}

func (r *Renderer) Page(w io.Writer, templateID string, data Data) error {
	info, ok := Lookup(templateID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	return r.page.Execute(w, view{Data: withDefaults(data), Template: info})
}

func Templates() []dto.TemplateInfo {
	out := make([]dto.TemplateInfo, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(templateID string) (dto.TemplateInfo, bool) {
	for _, t := range catalog {
		if t.ID == templateID {
			return t, true
		}
	}
	return dto.TemplateInfo{}, false
}

// FromPage maps resolved page data to render input.
func FromPage(p *dto.PageData) Data {
	return Data{
		PageID:             p.PageID,
		CreatorID:          p.CreatorIDDisplay,
		CreatorName:        p.CreatorName,
		CreatorBio:         p.Description,
		Price:              p.SubscriptionAmount,
		Currency:           p.Currency,
		SuccessRedirectURL: p.SuccessRedirectURL,
		FailureRedirectURL: p.FailureRedirectURL,
	}
}

func withDefaults(d Data) Data {
	if d.CreatorName == "" {
		d.CreatorName = d.CreatorID
	}
	if d.CreatorName == "" {
		d.CreatorName = defaultCreatorName
	}
	if d.CreatorID == "" {
		d.CreatorID = defaultCreatorName
	}
	if d.CreatorBio == "" {
		d.CreatorBio = defaultBio
	}
	if d.CreatorImage == "" {
		d.CreatorImage = defaultImage
	}
	if !d.Price.IsPositive() {
		d.Price = defaultPrice
	}
	if d.Currency == "" {
		d.Currency = defaultCurrency
	}
	return d
}
