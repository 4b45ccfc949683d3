// Package pageid builds and reads landing page identifiers.
//
// Single-reference templates use "creatorRef-template-stamp". The dual-reference
// template (modern) uses "accountRef-creatorRef-modern-stamp" so the payer account
// is carried by the page itself and no signup is needed.
package pageid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	TemplateMinimal             = "minimal"
	TemplateModern              = "modern"
	TemplateVideoFeed           = "video-feed"
	TemplateJose                = "jose"
	TemplateBusinessServices    = "business-services"
	TemplateBetting             = "betting"
	TemplateBusinessServicesPro = "business-services-pro"
)

const separator = "-"

var (
	ErrUnknownTemplate   = errors.New("unknown template")
	ErrInvalidCreatorRef = errors.New("creator ID must be a valid integer")
	ErrInvalidAccountRef = errors.New("user ID must be a valid integer")
)

var known = map[string]struct{}{
	TemplateMinimal:             {},
	TemplateModern:              {},
	TemplateVideoFeed:           {},
	TemplateJose:                {},
	TemplateBusinessServices:    {},
	TemplateBetting:             {},
	TemplateBusinessServicesPro: {},
}

// Ref is the structured form of a page identifier.
type Ref struct {
	AccountRef *int64
	CreatorRef int64
	Template   string
	Stamp      string
}

func Known(template string) bool {
	_, ok := known[template]
	return ok
}

// Normalize applies the default template used by older clients.
func Normalize(template string) string {
	template = strings.TrimSpace(template)
	if template == "" {
		return TemplateMinimal
	}
	return template
}

// RequiresAccountResolution reports whether the payer account must be resolved
// from the phone number instead of being read from the page identifier.
func RequiresAccountResolution(template string) bool {
	return Normalize(template) != TemplateModern
}

// New builds a Ref for a page created now. accountRef is only kept for the modern template.
func New(creatorRef int64, accountRef *int64, template string, now time.Time) (Ref, error) {
	template = Normalize(template)
	if !Known(template) {
		return Ref{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, template)
	}

	ref := Ref{
		CreatorRef: creatorRef,
		Template:   template,
		Stamp:      strconv.FormatInt(now.UnixMilli(), 10),
	}
	if template == TemplateModern {
		if accountRef == nil {
			return Ref{}, ErrInvalidAccountRef
		}
		a := *accountRef
		ref.AccountRef = &a
	}
	return ref, nil
}

func (r Ref) String() string {
	parts := make([]string, 0, 4)
	if r.Template == TemplateModern && r.AccountRef != nil {
		parts = append(parts, strconv.FormatInt(*r.AccountRef, 10))
	}
	parts = append(parts, strconv.FormatInt(r.CreatorRef, 10), r.Template, r.Stamp)
	return strings.Join(parts, separator)
}

// Parse reads a legacy page identifier using the fixed rule of its template.
func Parse(pageID, template string) (Ref, error) {
	template = Normalize(template)
	if !Known(template) {
		return Ref{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, template)
	}

	parts := strings.Split(strings.TrimSpace(pageID), separator)
	ref := Ref{Template: template}

	creatorIdx := 0
	if template == TemplateModern {
		account, err := parseInt(parts, 0)
		if err != nil {
			return Ref{}, ErrInvalidAccountRef
		}
		ref.AccountRef = &account
		creatorIdx = 1
	}

	creator, err := parseInt(parts, creatorIdx)
	if err != nil {
		return Ref{}, ErrInvalidCreatorRef
	}
	ref.CreatorRef = creator

	if len(parts) > creatorIdx+2 {
		ref.Stamp = parts[len(parts)-1]
	}
	return ref, nil
}

func parseInt(parts []string, idx int) (int64, error) {
	if idx >= len(parts) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(parts[idx], 10, 64)
}
