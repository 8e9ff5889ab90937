package vectorstore

import (
	"strconv"

	"github.com/kailas-cloud/mattdex/internal/domain/catalog"
)

// Hash field names of a stored mattress document.
const (
	fieldName        = "name"
	fieldBrand       = "brand"
	fieldType        = "type"
	fieldPrice       = "price"
	fieldPriceWon    = "price_won"
	fieldFeatures    = "features_text"
	fieldTargetUsers = "target_users_text"
	fieldDescription = "description"
	fieldDocument    = "document"
	fieldVector      = "vector"
)

var returnFields = []string{
	fieldName, fieldBrand, fieldType, fieldPrice, fieldPriceWon,
	fieldFeatures, fieldTargetUsers, fieldDescription, fieldDocument,
}

// recordToFields flattens a record into hash fields. List values are stored
// comma-joined so they survive the flat string-typed storage.
func recordToFields(rec catalog.Record, document string, vector []byte) map[string]string {
	return map[string]string{
		fieldName:        rec.Name,
		fieldBrand:       rec.Brand,
		fieldType:        rec.Type,
		fieldPrice:       strconv.FormatFloat(rec.Price, 'g', -1, 64),
		fieldPriceWon:    strconv.Itoa(rec.PriceWon),
		fieldFeatures:    catalog.JoinList(rec.Features),
		fieldTargetUsers: catalog.JoinList(rec.TargetUsers),
		fieldDescription: rec.Description,
		fieldDocument:    document,
		fieldVector:      string(vector),
	}
}

// fieldsToRecord restores a record from hash fields. Unknown or missing
// numeric fields parse to zero.
func fieldsToRecord(id string, fields map[string]string) catalog.Record {
	price, _ := strconv.ParseFloat(fields[fieldPrice], 64)
	priceWon, _ := strconv.Atoi(fields[fieldPriceWon])

	return catalog.Record{
		ID:          id,
		Name:        fields[fieldName],
		Brand:       fields[fieldBrand],
		Type:        fields[fieldType],
		Price:       price,
		PriceWon:    priceWon,
		Features:    catalog.SplitList(fields[fieldFeatures]),
		TargetUsers: catalog.SplitList(fields[fieldTargetUsers]),
		Description: fields[fieldDescription],
	}
}
