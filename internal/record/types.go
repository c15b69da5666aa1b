package record

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Record is one user document served by the record service at /usuario/{id}.
// Members the pipeline does not model are kept in extra and written back
// unchanged on update.
type Record struct {
	ID      int
	Name    string
	Account Account
	News    []NewsItem

	hasAccount bool
	extra      map[string]json.RawMessage
}

// Account is the bank account embedded in a Record under "conta".
//
// Fields decoded from the service are re-encoded byte for byte unless they
// were changed, so a numeric "numero" or a null "agencia" survives a PUT.
type Account struct {
	Agency  string
	Number  string
	Balance float64
	Limit   float64

	raw     members
	decoded accountFields
}

type accountFields struct {
	agency, number string
	balance, limit float64
}

// NewsItem is one promotional message attached to a Record. Like Account, a
// decoded item keeps its unmodelled members and the original encoding of
// unchanged fields.
type NewsItem struct {
	ID          int
	Icon        string
	Description string

	raw     members
	decoded newsFields
}

type newsFields struct {
	id                int
	icon, description string
}

// LastNews returns the most recently appended item, or false when the record
// has none.
func (r *Record) LastNews() (NewsItem, bool) {
	if len(r.News) == 0 {
		return NewsItem{}, false
	}
	return r.News[len(r.News)-1], true
}

func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(r.extra)+4)
	for k, v := range r.extra {
		m[k] = v
	}

	var err error
	if m["id"], err = json.Marshal(r.ID); err != nil {
		return nil, err
	}
	if m["nome"], err = json.Marshal(r.Name); err != nil {
		return nil, err
	}
	if r.hasAccount || !r.Account.isZero() {
		if m["conta"], err = json.Marshal(r.Account); err != nil {
			return nil, err
		}
	}
	news := r.News
	if news == nil {
		news = []NewsItem{}
	}
	if m["news"], err = json.Marshal(news); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["id"]; ok {
		var id any
		if err := json.Unmarshal(v, &id); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		n, err := cast.ToIntE(id)
		if err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		r.ID = n
		delete(raw, "id")
	}
	if v, ok := raw["nome"]; ok {
		var name *string
		if err := json.Unmarshal(v, &name); err != nil {
			return fmt.Errorf("decoding nome: %w", err)
		}
		if name != nil {
			r.Name = *name
		}
		delete(raw, "nome")
	}
	if v, ok := raw["conta"]; ok {
		if string(v) != "null" {
			if err := json.Unmarshal(v, &r.Account); err != nil {
				return fmt.Errorf("decoding conta: %w", err)
			}
			r.hasAccount = true
		}
		delete(raw, "conta")
	}
	if v, ok := raw["news"]; ok {
		if err := json.Unmarshal(v, &r.News); err != nil {
			return fmt.Errorf("decoding news: %w", err)
		}
		delete(raw, "news")
	}

	r.extra = raw
	return nil
}

func (a Account) isZero() bool {
	return a.Agency == "" && a.Number == "" && a.Balance == 0 && a.Limit == 0 && len(a.raw) == 0
}

func (a Account) MarshalJSON() ([]byte, error) {
	return a.raw.encode([]member{
		{"agencia", a.Agency, a.Agency != a.decoded.agency},
		{"numero", a.Number, a.Number != a.decoded.number},
		{"balanco", a.Balance, a.Balance != a.decoded.balance},
		{"limite", a.Limit, a.Limit != a.decoded.limit},
	})
}

// UnmarshalJSON is lenient about scalar types: the service has been seen to
// send numeric account numbers and string balances.
func (a *Account) UnmarshalJSON(data []byte) error {
	raw, err := decodeMembers(data)
	if err != nil {
		return err
	}

	var v any
	if v, err = raw.value("agencia"); err != nil {
		return err
	}
	a.Agency = cast.ToString(v)
	if v, err = raw.value("numero"); err != nil {
		return err
	}
	a.Number = cast.ToString(v)
	if v, err = raw.value("balanco"); err != nil {
		return err
	}
	a.Balance = cast.ToFloat64(v)
	if v, err = raw.value("limite"); err != nil {
		return err
	}
	a.Limit = cast.ToFloat64(v)

	a.raw = raw
	a.decoded = accountFields{agency: a.Agency, number: a.Number, balance: a.Balance, limit: a.Limit}
	return nil
}

func (n NewsItem) MarshalJSON() ([]byte, error) {
	return n.raw.encode([]member{
		{"id", n.ID, n.ID != n.decoded.id},
		{"icone", n.Icon, n.Icon != n.decoded.icon},
		{"descricao", n.Description, n.Description != n.decoded.description},
	})
}

// UnmarshalJSON accepts ids sent as strings or integral floats.
func (n *NewsItem) UnmarshalJSON(data []byte) error {
	raw, err := decodeMembers(data)
	if err != nil {
		return err
	}

	var v any
	if v, err = raw.value("id"); err != nil {
		return err
	}
	if v != nil {
		if n.ID, err = cast.ToIntE(v); err != nil {
			return fmt.Errorf("decoding news id: %w", err)
		}
	}
	if v, err = raw.value("icone"); err != nil {
		return err
	}
	n.Icon = cast.ToString(v)
	if v, err = raw.value("descricao"); err != nil {
		return err
	}
	n.Description = cast.ToString(v)

	n.raw = raw
	n.decoded = newsFields{id: n.ID, icon: n.Icon, description: n.Description}
	return nil
}

// members holds a JSON object's members exactly as received.
type members map[string]json.RawMessage

// member is a modelled field to encode.
type member struct {
	key     string
	value   any
	changed bool
}

func decodeMembers(data []byte) (members, error) {
	var raw members
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = members{}
	}
	return raw, nil
}

// value decodes the member key, returning nil when it is absent or null.
func (m members) value(key string) (any, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return out, nil
}

// encode writes every received member back unchanged and overlays the
// modelled fields. A field is re-encoded when it changed or when the object
// was never decoded; an unchanged field keeps its received bytes, and an
// unchanged field that was absent stays absent.
func (m members) encode(fields []member) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m)+len(fields))
	for k, v := range m {
		out[k] = v
	}
	for _, f := range fields {
		if m != nil && !f.changed {
			continue
		}
		b, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.key, err)
		}
		out[f.key] = b
	}
	return json.Marshal(out)
}
