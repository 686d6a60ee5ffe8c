package source

import (
	"fmt"

	"github.com/rdce-vr/Local-Track/internal/config"
	"github.com/rdce-vr/Local-Track/internal/model"
)

// Source kinds accepted in configuration.
const (
	KindTable = "table"
	KindText  = "text"
	KindJSON  = "json"
)

// Args holds what NewSource needs to build a source.
type Args struct {
	Config   config.SourceConfig
	Client   *Client
	Catalog  *model.Catalog // fuel kinds only; DefaultCatalog when nil
	Province string         // table kind only
}

// NewSource returns an HTTPSource with the parser matching Config.Kind.
func NewSource(args Args) (*HTTPSource, error) {
	if args.Client == nil {
		return nil, errNilClient
	}
	parser, err := newParser(args)
	if err != nil {
		return nil, err
	}
	return NewHTTPSource(args.Config.Name, args.Config.URL, args.Client, parser), nil
}

func newParser(args Args) (Parser, error) {
	catalog := args.Catalog
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}

	cfg := args.Config
	switch cfg.Kind {
	case KindTable:
		return NewTableParser(cfg.Name, args.Province, catalog), nil
	case KindText:
		return NewTextParser(cfg.Name, catalog), nil
	case KindJSON:
		return NewGoldParser(cfg.Name, cfg.BuyField, cfg.SellField, cfg.MidField), nil
	}
	return nil, fmt.Errorf("%w, kind %s", errInvalidKind, cfg.Kind)
}
