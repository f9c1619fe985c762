package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"instant-checkout/internal/domain"
	"github.com/google/uuid"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Options tune how rows are read.
type Options struct {
	// DefaultCurrency applies to rows without a currency column value.
	DefaultCurrency string
	// SkipInvalid logs and skips products that fail validation instead of aborting.
	SkipInvalid bool
	Logger      *log.Logger
}

// Result counts what a run did.
type Result struct {
	Imported int
	Virtual  int
	Skipped  int
}

// CSVImporter upserts products from a CSV export into one store. Rows without
// a key continue the previous product and only contribute images.
type CSVImporter struct {
	reader  *csv.Reader
	repo    ProductWriter
	storeID string
	opts    Options
}

func NewCSVImporter(r io.Reader, repo ProductWriter, storeID string, opts Options) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &CSVImporter{reader: csvr, repo: repo, storeID: storeID, opts: opts}
}

// columns maps each product field to the headers accepted for it. The first
// header is the commercetools export name.
var columns = map[string][]string{
	"id":       {"id"},
	"key":      {"key"},
	"name":     {"name.en", "name"},
	"desc":     {"description.en", "description"},
	"sku":      {"variants.sku", "sku"},
	"cents":    {"variants.prices.value.centAmount", "price_cents"},
	"price":    {"price"},
	"currency": {"variants.prices.value.currencyCode", "currency"},
	"virtual":  {"virtual", "is_virtual"},
	"image":    {"variants.images.url", "image"},
}

type row struct {
	line     int
	product  domain.Product
	hasPrice bool
	images   []string
}

// Run reads the whole input. With SkipInvalid unset the first invalid
// product aborts the run; products saved before it stay saved.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result
	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var current *row
	flush := func() error {
		if current == nil {
			return nil
		}
		err := i.save(ctx, current)
		switch {
		case err == nil:
			res.Imported++
			if current.product.Virtual {
				res.Virtual++
			}
		case i.opts.SkipInvalid && !errors.Is(err, errWrite):
			i.opts.Logger.Printf("importer: skip line=%d err=%v", current.line, err)
			res.Skipped++
		default:
			return err
		}
		return nil
	}

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read line %d: %w", line, err)
		}
		r, err := i.parse(record, index, line)
		if err != nil {
			if !i.opts.SkipInvalid {
				return res, err
			}
			i.opts.Logger.Printf("importer: skip line=%d err=%v", line, err)
			res.Skipped++
			continue
		}
		if r == nil {
			continue
		}
		if r.product.Key == "" {
			if current != nil {
				current.images = append(current.images, r.images...)
			}
			continue
		}
		if err := flush(); err != nil {
			return res, err
		}
		current = r
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

var errWrite = errors.New("write product")

func (i *CSVImporter) save(ctx context.Context, r *row) error {
	p := r.product
	if p.Name == "" || p.SKU == "" || !r.hasPrice || p.Currency == "" {
		return fmt.Errorf("line %d: product %q needs name, sku, price and currency", r.line, p.Key)
	}
	if len(r.images) > 0 {
		p.Attributes = map[string]interface{}{"images": r.images}
	}
	if _, err := i.repo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("%w %q: %w", errWrite, p.Key, err)
	}
	return nil
}

// parse returns nil for rows that carry neither a key nor an image.
func (i *CSVImporter) parse(record []string, index map[string]int, line int) (*row, error) {
	get := func(field string) string {
		for _, h := range columns[field] {
			if pos, ok := index[h]; ok && pos < len(record) {
				if v := strings.TrimSpace(record[pos]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	key, image := get("key"), get("image")
	if key == "" && image == "" {
		return nil, nil
	}
	r := &row{line: line}
	if image != "" {
		r.images = []string{image}
	}
	if key == "" {
		return r, nil
	}

	id := get("id")
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("line %d: invalid id %q for key %q", line, id, key)
		}
	}
	currency := strings.ToUpper(get("currency"))
	if currency == "" {
		currency = i.opts.DefaultCurrency
	}
	cents, hasPrice, err := parsePrice(get("cents"), get("price"))
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", line, err)
	}
	virtual := false
	if v := get("virtual"); v != "" {
		if virtual, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("line %d: invalid virtual flag %q", line, v)
		}
	}

	r.hasPrice = hasPrice
	r.product = domain.Product{
		ID:          id,
		StoreID:     i.storeID,
		Key:         key,
		SKU:         get("sku"),
		Name:        get("name"),
		Description: get("desc"),
		PriceCents:  cents,
		Currency:    currency,
		Virtual:     virtual,
	}
	return r, nil
}

// parsePrice prefers an integer cent amount and falls back to a decimal price
// with at most two fraction digits. Zero is a valid price.
func parsePrice(centStr, priceStr string) (int64, bool, error) {
	if centStr != "" {
		cents, err := strconv.ParseInt(centStr, 10, 64)
		if err != nil || cents < 0 {
			return 0, false, fmt.Errorf("invalid cent amount %q", centStr)
		}
		return cents, true, nil
	}
	if priceStr == "" {
		return 0, false, nil
	}
	whole, frac, _ := strings.Cut(priceStr, ".")
	if len(frac) > 2 {
		return 0, false, fmt.Errorf("invalid price %q", priceStr)
	}
	frac += strings.Repeat("0", 2-len(frac))
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, false, fmt.Errorf("invalid price %q", priceStr)
	}
	fracCents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid price %q", priceStr)
	}
	return units*100 + fracCents, true, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}
