package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"po-service/internal/config"
	"po-service/internal/fileio"
	"po-service/internal/middleware"
	"po-service/internal/order/export"
	"po-service/internal/order/model"
	"po-service/internal/order/service"
	"po-service/internal/order/session"
)

type Handler struct {
	cfg    config.Config
	logger zerolog.Logger
	store  *session.Store
}

func New(cfg config.Config, logger zerolog.Logger, store *session.Store) *Handler {
	return &Handler{cfg: cfg, logger: logger, store: store}
}

func (h *Handler) log(r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return h.logger.With().Str("rid", rid).Logger()
	}
	return h.logger
}

// ---- views ----

type candidateView struct {
	ItemCode string  `json:"item_code"`
	Product  string  `json:"product"`
	OEM      string  `json:"oem"`
	Score    float64 `json:"score"`
}

type poLineView struct {
	ItemCode  string          `json:"item_code"`
	OEM       string          `json:"oem"`
	Product   string          `json:"product"`
	Warehouse string          `json:"wh_code"`
	Stock     decimal.Decimal `json:"stock"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	NoPrice   bool            `json:"no_price,omitempty"`
	NoStock   bool            `json:"no_stock,omitempty"`
}

type lineView struct {
	Index         int                 `json:"index"`
	Raw           string              `json:"raw"`
	Status        session.LineStatus  `json:"status"`
	Quantity      int                 `json:"quantity,omitempty"`
	PriceOverride *decimal.Decimal    `json:"price_override,omitempty"`
	Query         string              `json:"query,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
	Candidates    []candidateView     `json:"candidates,omitempty"`
	Tokens        []model.NumberToken `json:"tokens,omitempty"`
	Warehouses    []string            `json:"warehouses,omitempty"`
	PO            *poLineView         `json:"po,omitempty"`
}

type totalsView struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Taxable  decimal.Decimal `json:"taxable"`
	GST      decimal.Decimal `json:"gst"`
	Total    decimal.Decimal `json:"total"`
}

func viewPO(po *model.PurchaseOrderLine) *poLineView {
	if po == nil {
		return nil
	}
	return &poLineView{
		ItemCode:  po.ItemCode,
		OEM:       po.OEM,
		Product:   po.Product,
		Warehouse: po.WarehouseCode,
		Stock:     po.Stock,
		Quantity:  po.Quantity,
		UnitPrice: po.UnitPrice,
		Amount:    po.Amount,
		NoPrice:   po.NoPrice,
		NoStock:   po.NoStock,
	}
}

func viewLine(i int, l *session.Line) lineView {
	v := lineView{
		Index:         i,
		Raw:           l.Raw,
		Status:        l.Status,
		Quantity:      l.Parsed.Quantity,
		PriceOverride: l.Parsed.PriceOverride,
		Query:         l.Parsed.Query,
		Warnings:      append([]string(nil), l.Parsed.Warnings...),
		Warehouses:    l.Warehouses,
		PO:            viewPO(l.PO),
	}
	if l.Status == session.StatusNoCandidates {
		v.Warnings = append(v.Warnings, model.ErrNoCandidateFound.Error())
	}
	if l.PO != nil {
		if l.PO.NoPrice {
			v.Warnings = append(v.Warnings, model.ErrNoPriceFound.Error())
		}
		if l.PO.NoStock {
			v.Warnings = append(v.Warnings, model.ErrNoWarehouseStock.Error())
		}
	}
	if l.Parsed.Ambiguous != nil {
		v.Tokens = l.Parsed.Ambiguous.Tokens
	}
	for _, c := range l.Parsed.Candidates {
		v.Candidates = append(v.Candidates, candidateView{
			ItemCode: c.Entry.ItemCode,
			Product:  c.Entry.Product,
			OEM:      c.Entry.OEM,
			Score:    c.Score,
		})
	}
	return v
}

func viewTotals(t model.Totals) totalsView {
	return totalsView{
		Subtotal: t.Subtotal.Round(2),
		Discount: t.Discount.Round(2),
		Taxable:  t.Taxable.Round(2),
		GST:      t.GST.Round(2),
		Total:    t.Total.Round(2),
	}
}

// ---- session lifecycle ----

// CreateSession ingests the sales register and stock report uploads and
// builds (or reuses, keyed on content) the session catalog.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := h.log(r)

	if err := r.ParseMultipartForm(200 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}

	salesFile, salesHdr, err := r.FormFile("sales")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "missing sales file: "+err.Error())
		return
	}
	defer salesFile.Close()

	stockFile, stockHdr, err := r.FormFile("stock")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "missing stock file: "+err.Error())
		return
	}
	defer stockFile.Close()

	salesBytes, err := io.ReadAll(salesFile)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "failed to read sales file: "+err.Error())
		return
	}
	stockBytes, err := io.ReadAll(stockFile)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "failed to read stock file: "+err.Error())
		return
	}

	key := session.CacheKey(salesBytes, stockBytes)
	cat, cached := h.store.CachedCatalog(key)
	if !cached {
		salesRows, err := fileio.ReadAnyMaps(bytes.NewReader(salesBytes), salesHdr.Filename, atoi(r.FormValue("sales_header_row"), 1))
		if err != nil {
			writeErr(w, http.StatusBadRequest, "failed to read sales register: "+err.Error())
			return
		}
		stockRows, err := fileio.ReadAnyMaps(bytes.NewReader(stockBytes), stockHdr.Filename, atoi(r.FormValue("stock_header_row"), 1))
		if err != nil {
			writeErr(w, http.StatusBadRequest, "failed to read stock report: "+err.Error())
			return
		}

		cat, err = service.BuildCatalog(salesRows)
		if err != nil {
			h.writeBuildError(w, err)
			return
		}
		if err := service.BuildStock(cat, stockRows); err != nil {
			h.writeBuildError(w, err)
			return
		}
		h.store.PutCatalog(key, cat)
	}

	sess := h.store.Create(cat)

	log.Info().
		Str("session", sess.ID).
		Bool("cached", cached).
		Int("records", len(cat.Records)).
		Int("items", len(cat.Entries)).
		Dur("elapsed", time.Since(start)).
		Msg("session created")

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"records":    len(cat.Records),
		"items":      len(cat.Entries),
		"customers":  cat.Customers,
	})
}

func (h *Handler) writeBuildError(w http.ResponseWriter, err error) {
	var schemaErr *model.SchemaError
	if errors.As(err, &schemaErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":  schemaErr.Error(),
			"kind":   "schema",
			"source": schemaErr.Source,
			"column": schemaErr.Column,
		})
		return
	}
	writeErr(w, http.StatusUnprocessableEntity, err.Error())
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	sess, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown session")
		return nil
	}
	return sess
}

// ---- order generation ----

type generateRequest struct {
	Text            string   `json:"text"`
	Customer        string   `json:"customer"`
	TwoNumberPolicy string   `json:"two_number_policy"`
	StripUnits      bool     `json:"strip_units"`
	Threshold       *float64 `json:"threshold"`
	Limit           *int     `json:"limit"`
}

// GenerateOrder tokenizes and ranks every line of the pasted order text,
// replacing any order already in progress. Ambiguous and unmatched lines
// come back flagged; they never abort the rest of the order.
func (h *Handler) GenerateOrder(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	log := h.log(r)

	var req generateRequest
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request body: "+err.Error())
		return
	}

	tokOpts := service.TokenizeOptions{
		TwoNumberPolicy: h.cfg.TwoNumberPolicy,
		StripUnits:      req.StripUnits,
	}
	if req.TwoNumberPolicy != "" {
		tokOpts.TwoNumberPolicy = req.TwoNumberPolicy
	}
	rankOpts := service.RankOptions{Threshold: h.cfg.RankThreshold, Limit: h.cfg.RankLimit}
	if req.Threshold != nil {
		rankOpts.Threshold = *req.Threshold
	}
	if req.Limit != nil {
		rankOpts.Limit = *req.Limit
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	sess.Customer = strings.ToUpper(strings.TrimSpace(req.Customer))
	sess.TokOpts = tokOpts
	sess.RankOpts = rankOpts
	sess.Lines = nil

	for _, raw := range strings.Split(req.Text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		l := &session.Line{Raw: raw}

		parsed, err := service.Tokenize(raw, tokOpts)
		l.Parsed = parsed
		var ambErr *model.AmbiguousError
		switch {
		case errors.As(err, &ambErr):
			l.Status = session.StatusAmbiguous
		default:
			h.rankLine(sess, l)
		}
		sess.Lines = append(sess.Lines, l)
	}

	views := make([]lineView, len(sess.Lines))
	for i, l := range sess.Lines {
		views[i] = viewLine(i, l)
	}

	log.Info().Str("session", sess.ID).Int("lines", len(sess.Lines)).Msg("order generated")
	writeJSON(w, http.StatusOK, map[string]any{"lines": views})
}

func (h *Handler) rankLine(sess *session.Session, l *session.Line) {
	l.Parsed.Candidates = service.Rank(l.Parsed.Query, sess.Catalog, sess.RankOpts)
	if len(l.Parsed.Candidates) == 0 {
		l.Status = session.StatusNoCandidates
		return
	}
	l.Status = session.StatusCandidates
}

func (h *Handler) line(w http.ResponseWriter, r *http.Request, sess *session.Session) (*session.Line, int) {
	n := atoi(chi.URLParam(r, "n"), -1)
	if n < 0 || n >= len(sess.Lines) {
		writeErr(w, http.StatusNotFound, "unknown line")
		return nil, -1
	}
	return sess.Lines[n], n
}

// ---- ambiguity confirmation ----

type confirmRequest struct {
	Roles []model.TokenRole `json:"roles"`
}

// ConfirmTokens applies the user's quantity/price/ignore assignment to
// an ambiguous line and re-ranks it.
func (h *Handler) ConfirmTokens(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req confirmRequest
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request body: "+err.Error())
		return
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	l, n := h.line(w, r, sess)
	if l == nil {
		return
	}
	if l.Parsed.Ambiguous == nil {
		writeErr(w, http.StatusConflict, "line is not ambiguous")
		return
	}

	parsed, err := service.ResolveAmbiguity(*l.Parsed.Ambiguous, req.Roles, sess.TokOpts)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	l.Parsed = parsed
	l.PO = nil
	l.Warehouses = nil
	h.rankLine(sess, l)

	writeJSON(w, http.StatusOK, viewLine(n, l))
}

// ---- candidate selection ----

type selectRequest struct {
	Candidate *int   `json:"candidate"`
	ItemCode  string `json:"item_code"`
}

// SelectCandidate resolves a line into a purchase-order row from either
// a ranked candidate or a manually entered item code. The manual path
// accepts codes missing from the catalog; such lines come back unpriced
// and unstocked for the user to fill in.
func (h *Handler) SelectCandidate(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req selectRequest
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request body: "+err.Error())
		return
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	l, n := h.line(w, r, sess)
	if l == nil {
		return
	}
	if l.Parsed.Ambiguous != nil {
		writeErr(w, http.StatusConflict, "line awaits quantity/price confirmation")
		return
	}

	var code, oem, product string
	switch {
	case req.Candidate != nil:
		if *req.Candidate < 0 || *req.Candidate >= len(l.Parsed.Candidates) {
			writeErr(w, http.StatusUnprocessableEntity, "candidate index out of range")
			return
		}
		e := l.Parsed.Candidates[*req.Candidate].Entry
		code, oem, product = e.ItemCode, e.OEM, e.Product
	case strings.TrimSpace(req.ItemCode) != "":
		code = strings.ToUpper(strings.TrimSpace(req.ItemCode))
		if i, ok := sess.Catalog.ByCode[code]; ok {
			e := sess.Catalog.Entries[i]
			oem, product = e.OEM, e.Product
		}
	default:
		writeErr(w, http.StatusBadRequest, "candidate index or item_code required")
		return
	}

	cat := sess.Catalog
	price, found := service.ResolvePrice(cat, code, l.Parsed.PriceOverride, sess.Customer)
	warehouses := service.OrderWarehouses(cat.WarehousesByItem[code], h.cfg.WarehousePriority)

	po := &model.PurchaseOrderLine{
		ItemCode:  code,
		OEM:       oem,
		Product:   product,
		Stock:     cat.StockByItem[code],
		Quantity:  l.Parsed.Quantity,
		UnitPrice: price,
		NoPrice:   !found,
		NoStock:   len(warehouses) == 0,
	}
	if len(warehouses) > 0 {
		po.WarehouseCode = warehouses[0]
	}
	po.Amount = po.UnitPrice.Mul(decimal.NewFromInt(int64(po.Quantity)))

	l.PO = po
	l.Warehouses = warehouses
	l.Status = session.StatusSelected

	writeJSON(w, http.StatusOK, viewLine(n, l))
}

// ---- purchase-order table ----

type editRequest struct {
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Warehouse *string          `json:"warehouse"`
}

// EditPOLine applies manual edits (last write wins) and re-runs the
// whole totals computation.
func (h *Handler) EditPOLine(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req editRequest
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request body: "+err.Error())
		return
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	l, _ := h.line(w, r, sess)
	if l == nil {
		return
	}
	if l.PO == nil {
		writeErr(w, http.StatusConflict, "line has no confirmed product yet")
		return
	}

	if req.Quantity != nil {
		if *req.Quantity < 1 {
			writeErr(w, http.StatusUnprocessableEntity, "quantity must be >= 1")
			return
		}
		l.PO.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			writeErr(w, http.StatusUnprocessableEntity, "unit price must not be negative")
			return
		}
		l.PO.UnitPrice = *req.UnitPrice
		l.PO.NoPrice = false
	}
	if req.Warehouse != nil {
		wh := strings.ToUpper(strings.TrimSpace(*req.Warehouse))
		if wh == "" {
			writeErr(w, http.StatusUnprocessableEntity, "warehouse must not be empty")
			return
		}
		l.PO.WarehouseCode = wh
		l.PO.NoStock = false
	}

	h.writePO(w, r, sess)
}

func (h *Handler) rates(w http.ResponseWriter, r *http.Request) (discount, gst decimal.Decimal, ok bool) {
	q := r.URL.Query()
	d := q.Get("discount")
	if d == "" {
		d = "3"
	}
	g := q.Get("gst")
	if g == "" {
		g = "18"
	}
	discount, err := service.ParseDiscountRate(d)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return discount, gst, false
	}
	gst, err = service.ParseGSTRate(g)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return discount, gst, false
	}
	return discount, gst, true
}

func (h *Handler) writePO(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	discount, gst, ok := h.rates(w, r)
	if !ok {
		return
	}

	lines := sess.POLines()
	totals := service.Recompute(lines, discount, gst)

	views := make([]*poLineView, len(lines))
	for i, po := range lines {
		views[i] = viewPO(po)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines":   views,
		"pending": len(sess.Lines) - len(lines),
		"totals":  viewTotals(totals),
	})
}

// GetPO returns the confirmed line table plus freshly computed totals.
func (h *Handler) GetPO(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	h.writePO(w, r, sess)
}

// ExportPO streams the purchase order as an XLSX workbook.
func (h *Handler) ExportPO(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	log := h.log(r)

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	lines := sess.POLines()
	if len(lines) == 0 {
		writeErr(w, http.StatusConflict, "no confirmed lines to export")
		return
	}
	discount, gst, ok := h.rates(w, r)
	if !ok {
		return
	}
	totals := service.Recompute(lines, discount, gst)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="PO.xlsx"`)
	if err := export.WriteXLSX(w, lines, totals); err != nil {
		log.Error().Err(err).Msg("write xlsx")
		return
	}
	log.Info().Str("session", sess.ID).Int("lines", len(lines)).Msg("po exported")
}
