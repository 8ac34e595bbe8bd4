package v1

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/sefa-b/bank-registry/internal/domain"
	"github.com/sefa-b/bank-registry/internal/errs"
	"github.com/sefa-b/bank-registry/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// responder renders the outcome of a bank operation in one representation.
type responder interface {
	list(w http.ResponseWriter, r *http.Request, banks []*domain.Bank)
	show(w http.ResponseWriter, r *http.Request, bank *domain.Bank)
	created(w http.ResponseWriter, r *http.Request, bank *domain.Bank)
	updated(w http.ResponseWriter, r *http.Request, bank *domain.Bank)
	deleted(w http.ResponseWriter, r *http.Request, id int64)
	// fail renders err. form, when set, is re-rendered on validation errors.
	fail(w http.ResponseWriter, r *http.Request, op string, err error, form *formView)
}

// formView is the state of the create or edit form.
type formView struct {
	Title    string
	Action   string
	ID       int64
	Name     string
	Location string
}

// pageData is passed to every HTML template.
type pageData struct {
	Title  string
	Flash  *flash
	Banks  []*domain.Bank
	Bank   *domain.Bank
	Form   *formView
	Status int
	Error  string
}

// jsonResponder answers with JSON bodies and status codes.
type jsonResponder struct{}

func (jsonResponder) list(w http.ResponseWriter, _ *http.Request, banks []*domain.Bank) {
	writeJSON(w, http.StatusOK, banks)
}

func (jsonResponder) show(w http.ResponseWriter, _ *http.Request, bank *domain.Bank) {
	writeJSON(w, http.StatusOK, bank)
}

func (jsonResponder) created(w http.ResponseWriter, r *http.Request, bank *domain.Bank) {
	w.Header().Set("Location", "/api/banks/"+strconv.FormatInt(bank.ID, 10))
	writeJSON(w, http.StatusCreated, bank)
}

func (jsonResponder) updated(w http.ResponseWriter, _ *http.Request, bank *domain.Bank) {
	writeJSON(w, http.StatusOK, bank)
}

func (jsonResponder) deleted(w http.ResponseWriter, _ *http.Request, _ int64) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bank deleted"})
}

func (jsonResponder) fail(w http.ResponseWriter, r *http.Request, op string, err error, _ *formView) {
	status, code, message := classify(r, op, err)
	writeJSON(w, status, apiError{Error: message, Code: code})
}

// apiError is the JSON error body.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// htmlResponder renders server-side pages and redirects after mutations.
type htmlResponder struct {
	templates *template.Template
}

func newHTMLResponder() *htmlResponder {
	return &htmlResponder{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (h *htmlResponder) list(w http.ResponseWriter, r *http.Request, banks []*domain.Bank) {
	h.render(w, http.StatusOK, "list", pageData{
		Title: "Banks",
		Flash: popFlash(w, r),
		Banks: banks,
	})
}

func (h *htmlResponder) show(w http.ResponseWriter, r *http.Request, bank *domain.Bank) {
	h.render(w, http.StatusOK, "detail", pageData{
		Title: bank.Name,
		Flash: popFlash(w, r),
		Bank:  bank,
	})
}

func (h *htmlResponder) created(w http.ResponseWriter, r *http.Request, _ *domain.Bank) {
	setFlash(w, flashSuccess, "Bank created successfully!")
	http.Redirect(w, r, "/banks", http.StatusSeeOther)
}

func (h *htmlResponder) updated(w http.ResponseWriter, r *http.Request, bank *domain.Bank) {
	setFlash(w, flashSuccess, "Bank updated successfully!")
	http.Redirect(w, r, "/banks/"+strconv.FormatInt(bank.ID, 10), http.StatusSeeOther)
}

func (h *htmlResponder) deleted(w http.ResponseWriter, r *http.Request, _ int64) {
	setFlash(w, flashSuccess, "Bank deleted successfully!")
	http.Redirect(w, r, "/banks", http.StatusSeeOther)
}

func (h *htmlResponder) fail(w http.ResponseWriter, r *http.Request, op string, err error, form *formView) {
	status, _, message := classify(r, op, err)

	var validationErr *errs.ValidationError
	if form != nil && errors.As(err, &validationErr) {
		h.render(w, status, "form", pageData{
			Title: form.Title,
			Flash: &flash{Kind: flashError, Message: message},
			Form:  form,
		})
		return
	}

	h.render(w, status, "error", pageData{
		Title:  http.StatusText(status),
		Status: status,
		Error:  message,
	})
}

// newForm renders an empty create form.
func (h *htmlResponder) newForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "form", pageData{
		Title: "New Bank",
		Flash: popFlash(w, r),
		Form:  createForm(domain.BankRequest{}),
	})
}

// editForm renders the edit form filled with the current values.
func (h *htmlResponder) editForm(w http.ResponseWriter, r *http.Request, bank *domain.Bank) {
	h.render(w, http.StatusOK, "form", pageData{
		Title: "Edit Bank",
		Flash: popFlash(w, r),
		Form:  editForm(bank.ID, domain.BankRequest{Name: bank.Name, Location: bank.Location}),
	})
}

func (h *htmlResponder) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		utils.Error("template render failed", "template", name, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func createForm(req domain.BankRequest) *formView {
	return &formView{
		Title:    "New Bank",
		Action:   "/banks",
		Name:     req.Name,
		Location: req.Location,
	}
}

func editForm(id int64, req domain.BankRequest) *formView {
	return &formView{
		Title:    "Edit Bank",
		Action:   "/banks/" + strconv.FormatInt(id, 10) + "/update",
		ID:       id,
		Name:     req.Name,
		Location: req.Location,
	}
}

// classify maps err to a response and logs failures that are not the
// caller's fault.
func classify(r *http.Request, op string, err error) (int, string, string) {
	status, code, message := errs.Classify(err)
	if status >= http.StatusInternalServerError {
		utils.Error("bank operation failed",
			"operation", op,
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"error", err.Error(),
		)
	}
	return status, code, message
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// wantsJSON reports whether the request carries a JSON body or prefers a JSON
// response over HTML.
func wantsJSON(r *http.Request) bool {
	if isJSONContent(r) {
		return true
	}

	var jsonQ, htmlQ float64
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if v, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
		switch mediaType {
		case "application/json":
			jsonQ = max(jsonQ, q)
		case "text/html":
			htmlQ = max(htmlQ, q)
		}
	}
	return jsonQ > htmlQ
}

func isJSONContent(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
