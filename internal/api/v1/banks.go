package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sefa-b/bank-registry/internal/domain"
	"github.com/sefa-b/bank-registry/internal/errs"
)

const (
	bankNotFoundMsg = "Bank not found"
	maxBodyBytes    = 1 << 20
)

// handleList lists all banks.
func (rt *Router) handleList(w http.ResponseWriter, r *http.Request, resp responder) {
	banks, err := rt.deps.Banks.GetAll(r.Context())
	if err != nil {
		resp.fail(w, r, "list", err, nil)
		return
	}
	resp.list(w, r, banks)
}

// handleGet shows a single bank.
func (rt *Router) handleGet(w http.ResponseWriter, r *http.Request, resp responder) {
	id, ok := bankID(r)
	if !ok {
		resp.fail(w, r, "get", errs.NewNotFoundError(bankNotFoundMsg), nil)
		return
	}

	bank, err := rt.deps.Banks.GetByID(r.Context(), id)
	if err != nil {
		resp.fail(w, r, "get", err, nil)
		return
	}
	resp.show(w, r, bank)
}

// handleNewForm renders the create form. JSON clients get 404 since there is
// nothing to render.
func (rt *Router) handleNewForm(w http.ResponseWriter, r *http.Request, resp responder) {
	if _, ok := resp.(*htmlResponder); !ok {
		resp.fail(w, r, "new form", errs.NewNotFoundError("Page not found"), nil)
		return
	}
	rt.html.newForm(w, r)
}

// handleEditForm renders the edit form for an existing bank.
func (rt *Router) handleEditForm(w http.ResponseWriter, r *http.Request, resp responder) {
	id, ok := bankID(r)
	if !ok {
		resp.fail(w, r, "edit form", errs.NewNotFoundError(bankNotFoundMsg), nil)
		return
	}

	bank, err := rt.deps.Banks.GetByID(r.Context(), id)
	if err != nil {
		resp.fail(w, r, "edit form", err, nil)
		return
	}

	if _, ok := resp.(*htmlResponder); !ok {
		resp.show(w, r, bank)
		return
	}
	rt.html.editForm(w, r, bank)
}

// handleCreate validates the submitted fields and creates a bank.
func (rt *Router) handleCreate(w http.ResponseWriter, r *http.Request, resp responder) {
	req, err := decodeBankRequest(w, r)
	if err == nil {
		req.Normalize()
		err = req.Validate()
	}
	if err != nil {
		resp.fail(w, r, "create", err, createForm(req))
		return
	}

	bank, err := rt.deps.Banks.Create(r.Context(), &req)
	if err != nil {
		resp.fail(w, r, "create", err, createForm(req))
		return
	}
	resp.created(w, r, bank)
}

// handleUpdate replaces name and location of an existing bank.
func (rt *Router) handleUpdate(w http.ResponseWriter, r *http.Request, resp responder) {
	id, ok := bankID(r)
	if !ok {
		resp.fail(w, r, "update", errs.NewNotFoundError(bankNotFoundMsg), nil)
		return
	}

	req, err := decodeBankRequest(w, r)
	if err == nil {
		req.Normalize()
		err = req.Validate()
	}
	if err != nil {
		resp.fail(w, r, "update", err, editForm(id, req))
		return
	}

	bank, err := rt.deps.Banks.Update(r.Context(), id, &req)
	if err != nil {
		resp.fail(w, r, "update", err, editForm(id, req))
		return
	}
	resp.updated(w, r, bank)
}

// handlePatch applies a partial update. JSON only.
func (rt *Router) handlePatch(w http.ResponseWriter, r *http.Request, resp responder) {
	id, ok := bankID(r)
	if !ok {
		resp.fail(w, r, "patch", errs.NewNotFoundError(bankNotFoundMsg), nil)
		return
	}

	var patch domain.BankPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		resp.fail(w, r, "patch", err, nil)
		return
	}
	if err := patch.Validate(); err != nil {
		resp.fail(w, r, "patch", err, nil)
		return
	}

	bank, err := rt.deps.Banks.Patch(r.Context(), id, &patch)
	if err != nil {
		resp.fail(w, r, "patch", err, nil)
		return
	}
	resp.updated(w, r, bank)
}

// handleDelete deletes a bank.
func (rt *Router) handleDelete(w http.ResponseWriter, r *http.Request, resp responder) {
	id, ok := bankID(r)
	if !ok {
		resp.fail(w, r, "delete", errs.NewNotFoundError(bankNotFoundMsg), nil)
		return
	}

	if err := rt.deps.Banks.Delete(r.Context(), id); err != nil {
		resp.fail(w, r, "delete", err, nil)
		return
	}
	resp.deleted(w, r, id)
}

// bankID parses the {id} path parameter. Anything but a positive integer
// cannot name a bank.
func bankID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeBankRequest reads name and location from a JSON body or from form
// fields.
func decodeBankRequest(w http.ResponseWriter, r *http.Request) (domain.BankRequest, error) {
	var req domain.BankRequest
	if isJSONContent(r) {
		err := decodeJSON(w, r, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return req, errs.NewValidationError("body", "invalid form body")
	}
	req.Name = r.PostForm.Get("name")
	req.Location = r.PostForm.Get("location")
	return req, nil
}

// decodeJSON decodes the body into v. An empty body leaves v untouched; a
// body holding more than one JSON value is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errs.NewValidationError("body", "invalid JSON body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errs.NewValidationError("body", "invalid JSON body")
	}
	return nil
}
