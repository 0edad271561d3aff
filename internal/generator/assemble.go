package generator

import (
	"fmt"
	"strings"

	"github.com/purin2/sql-practice-tutor/internal/vocab"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// userRelation is the many-to-one reference every dependent table declares.
var userRelation = core.Relation{
	FromColumn: "user_id",
	ToTable:    TableUsers,
	ToColumn:   "user_id",
	Type:       core.ManyToOne,
}

// Assemble packages the dataset into the exported document. Table order is
// users, payments, events, ad_costs.
func Assemble(ds *Dataset, v *vocab.Vocabulary) *core.Document {
	sources := make([]string, len(v.Sources))
	for i, s := range v.Sources {
		sources[i] = s.Name
	}

	return &core.Document{Tables: []core.Table{
		{
			Name:        TableUsers,
			Description: "Users with acquisition source, device and demographics",
			Columns: []core.Column{
				{Name: "user_id", Type: core.TypeString, Description: "User ID (e.g. " + FormatID(UserIDPrefix, UserIDDigits, 1) + ")", IsPrimaryKey: true},
				{Name: "ad_source", Type: core.TypeString, Description: enumDescription("Acquisition source", sources)},
				{Name: "campaign", Type: core.TypeString, Description: "Campaign name"},
				{Name: "device", Type: core.TypeString, Description: enumDescription("Device", vocab.Labels(v.Devices))},
				{Name: "age_group", Type: core.TypeString, Description: enumDescription("Age group", vocab.Labels(v.AgeGroups))},
				{Name: "region", Type: core.TypeString, Description: enumDescription("Region", vocab.Labels(v.Regions))},
				{Name: "registered_at", Type: core.TypeDateTime, Description: "Registration time"},
			},
			Relations:  []core.Relation{},
			SampleData: toRows(ds.Users),
		},
		{
			Name:        TablePayments,
			Description: "Payment history",
			Columns: []core.Column{
				{Name: "payment_id", Type: core.TypeString, Description: "Payment ID (e.g. " + FormatID(PaymentIDPrefix, PaymentIDDigits, 1) + ")", IsPrimaryKey: true},
				{Name: "user_id", Type: core.TypeString, Description: "User ID", IsForeignKey: true},
				{Name: "amount", Type: core.TypeInteger, Description: "Amount paid (JPY)"},
				{Name: "payment_date", Type: core.TypeDateTime, Description: "Payment time"},
			},
			Relations:  []core.Relation{userRelation},
			SampleData: toRows(ds.Payments),
		},
		{
			Name:        TableEvents,
			Description: "In-app activity log",
			Columns: []core.Column{
				{Name: "event_id", Type: core.TypeString, Description: "Event ID (e.g. " + FormatID(EventIDPrefix, EventIDDigits, 1) + ")", IsPrimaryKey: true},
				{Name: "user_id", Type: core.TypeString, Description: "User ID", IsForeignKey: true},
				{Name: "event_type", Type: core.TypeString, Description: enumDescription("Event type", v.EventTypes)},
				{Name: "event_date", Type: core.TypeDateTime, Description: "Event time"},
			},
			Relations:  []core.Relation{userRelation},
			SampleData: toRows(ds.Events),
		},
		{
			Name:        TableAdCosts,
			Description: "Monthly advertising cost",
			Columns: []core.Column{
				{Name: "id", Type: core.TypeInteger, Description: "Record ID", IsPrimaryKey: true},
				{Name: "month", Type: core.TypeString, Description: "Month (YYYY-MM)"},
				{Name: "ad_source", Type: core.TypeString, Description: "Ad source"},
				{Name: "campaign", Type: core.TypeString, Description: "Campaign name"},
				{Name: "cost", Type: core.TypeInteger, Description: "Ad spend (JPY)"},
			},
			Relations:  []core.Relation{},
			SampleData: toRows(ds.AdCosts),
		},
	}}
}

func enumDescription(label string, values []string) string {
	return fmt.Sprintf("%s (%s)", label, strings.Join(values, ", "))
}

type rower interface {
	Row() core.Row
}

func toRows[T rower](items []T) []core.Row {
	rows := make([]core.Row, len(items))
	for i, item := range items {
		rows[i] = item.Row()
	}
	return rows
}
