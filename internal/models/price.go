package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Price is a catalog price exactly as stored: legacy documents carry a
// currency-formatted string ("Rs. 200"), newer ones a plain number. The
// distinction matters downstream, so it is kept instead of normalized here.
type Price struct {
	Text     string
	Number   float64
	IsNumber bool
}

func PriceFromString(s string) Price {
	return Price{Text: s}
}

func PriceFromNumber(n float64) Price {
	return Price{Number: n, IsNumber: true}
}

func (p Price) String() string {
	if p.IsNumber {
		return strconv.FormatFloat(p.Number, 'f', -1, 64)
	}
	return p.Text
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.IsNumber {
		return json.Marshal(p.Number)
	}
	return json.Marshal(p.Text)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PriceFromNumber(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("price must be a number or a string: %w", err)
	}
	*p = PriceFromString(s)
	return nil
}

func (p Price) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if p.IsNumber {
		return bson.MarshalValue(p.Number)
	}
	return bson.MarshalValue(p.Text)
}

func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*p = PriceFromString(rv.StringValue())
	case bsontype.Double:
		*p = PriceFromNumber(rv.Double())
	case bsontype.Int32:
		*p = PriceFromNumber(float64(rv.Int32()))
	case bsontype.Int64:
		*p = PriceFromNumber(float64(rv.Int64()))
	case bsontype.Null:
		*p = Price{}
	default:
		return fmt.Errorf("cannot decode %s into a price", t)
	}
	return nil
}
