package builder

import (
	"context"
	"encoding/json"
)

// WidgetKind identifies a widget editable through the editor session.
type WidgetKind string

// Block kinds materialise as entries in the block list.
const (
	KindLink        WidgetKind = "link"
	KindCarousel    WidgetKind = "carousel"
	KindProducts    WidgetKind = "products"
	KindSectionText WidgetKind = "sectionText"
	KindEmbed       WidgetKind = "embet"
	KindConnect     WidgetKind = "Connect"
	KindTablePrice  WidgetKind = "tablePrice"
	KindPromoVideo  WidgetKind = "promoVideo"
	KindBackground  WidgetKind = "background"
)

// Virtual kinds are edited through the session but never become blocks.
const (
	KindEmbedSelector       WidgetKind = "embedServiceSelector"
	KindLeftColVideo        WidgetKind = "leftColVideo"
	KindLeftColSocialLink   WidgetKind = "leftColSocialLink"
	KindLeftColButtonWidget WidgetKind = "leftColButtonWidget"
	KindLeftColProfile      WidgetKind = "leftColProfile"
)

// CacheStore is the string-keyed durable cache holding JSON snapshots.
// Implementations ensure thread safety; a missing key returns ok=false.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SchemaClient is the REST boundary consumed by hydration and save.
type SchemaClient interface {
	FetchSchema(ctx context.Context, projectID string) (json.RawMessage, error)
	PatchSchema(ctx context.Context, projectID string, req PatchSchemaRequest) error
	RequestUploadURLs(ctx context.Context, projectID string, items []UploadItem) ([]UploadDestination, error)
	Upload(ctx context.Context, dest UploadDestination, file *LocalFile) error
}

// RefreshHook notifies subscribers about block list and session changes.
type RefreshHook interface {
	BlocksUpdated(ctx context.Context, event BlockEvent) error
}

// Block is one widget instance placed on the page.
type Block struct {
	ID    string         `json:"id"`
	Type  WidgetKind     `json:"type"`
	Order int            `json:"order"`
	Data  map[string]any `json:"data"`
}

// ProjectSettings holds the persistent left-hand column.
type ProjectSettings struct {
	Circle         bool           `json:"circle"`
	Adult          bool           `json:"adult"`
	ProfileData    map[string]any `json:"profileData,omitempty"`
	VideoData      map[string]any `json:"videoData,omitempty"`
	SocialLinkData map[string]any `json:"socialLinkData,omitempty"`
	ButtonData     map[string]any `json:"buttonData,omitempty"`
}

// Document is the full page state persisted as the project schema.
type Document struct {
	Blocks   []Block         `json:"projectBlocks"`
	Settings ProjectSettings `json:"projectSettings"`
}

// UploadItem requests an upload destination for a generated filename.
type UploadItem struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadDestination is the server-issued location for one file.
type UploadDestination struct {
	Filename    string `json:"filename"`
	ContentPath string `json:"content_path"`
	UploadURL   string `json:"upload_url"`
}

// PatchSchemaRequest is the body of the schema update call.
type PatchSchemaRequest struct {
	Data       Document `json:"data"`
	DelContent []string `json:"del_content"`
}

// BlockEvent describes changes that subscribers might care about.
type BlockEvent struct {
	BlockID string     `json:"block_id,omitempty"`
	Kind    WidgetKind `json:"kind,omitempty"`
	Reason  string     `json:"reason"`
	Seq     uint64     `json:"seq,omitempty"`
}
