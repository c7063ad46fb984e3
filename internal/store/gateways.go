package store

import (
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/models"
)

// SQLGateways builds SQL gateways for every collection over conn.
func SQLGateways(conn gateway.Conn, logger *zap.Logger) Gateways {
	return Gateways{
		Members:   gateway.NewSQL(conn, models.MemberSchema, logger),
		Assets:    gateway.NewSQL(conn, models.AssetSchema, logger),
		Financial: gateway.NewSQL(conn, models.FinancialRecordSchema, logger),
		Events:    gateway.NewSQL(conn, models.EventSchema, logger),
		Education: gateway.NewSQL(conn, models.EducationEventSchema, logger),
		Media:     gateway.NewSQL(conn, models.MediaFileSchema, logger),
		Groups:    gateway.NewSQL(conn, models.GroupSchema, logger),
	}
}

// MemoryGateways bundles in-memory gateways, exposing the concrete types for seeding and failure
// injection.
type MemoryGateways struct {
	Members   *gateway.Memory[models.Member]
	Assets    *gateway.Memory[models.Asset]
	Financial *gateway.Memory[models.FinancialRecord]
	Events    *gateway.Memory[models.Event]
	Education *gateway.Memory[models.EducationEvent]
	Media     *gateway.Memory[models.MediaFile]
	Groups    *gateway.Memory[models.Group]
}

// NewMemoryGateways creates empty in-memory gateways.
func NewMemoryGateways() *MemoryGateways {
	return &MemoryGateways{
		Members:   gateway.NewMemory(models.MemberSchema),
		Assets:    gateway.NewMemory(models.AssetSchema),
		Financial: gateway.NewMemory(models.FinancialRecordSchema),
		Events:    gateway.NewMemory(models.EventSchema),
		Education: gateway.NewMemory(models.EducationEventSchema),
		Media:     gateway.NewMemory(models.MediaFileSchema),
		Groups:    gateway.NewMemory(models.GroupSchema),
	}
}

// Gateways returns the bundle as interface values.
func (m *MemoryGateways) Gateways() Gateways {
	return Gateways{
		Members:   m.Members,
		Assets:    m.Assets,
		Financial: m.Financial,
		Events:    m.Events,
		Education: m.Education,
		Media:     m.Media,
		Groups:    m.Groups,
	}
}

// Instrument wraps every gateway of gws with metrics. A nil metrics returns gws unchanged.
func Instrument(gws Gateways, metrics *gateway.Metrics) Gateways {
	return Gateways{
		Members:   gateway.Instrument(gws.Members, CollectionMembers, metrics),
		Assets:    gateway.Instrument(gws.Assets, CollectionAssets, metrics),
		Financial: gateway.Instrument(gws.Financial, CollectionFinancial, metrics),
		Events:    gateway.Instrument(gws.Events, CollectionEvents, metrics),
		Education: gateway.Instrument(gws.Education, CollectionEducation, metrics),
		Media:     gateway.Instrument(gws.Media, CollectionMedia, metrics),
		Groups:    gateway.Instrument(gws.Groups, CollectionGroups, metrics),
	}
}
