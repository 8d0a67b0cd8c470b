package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"projecthub/internal/core"
	"projecthub/internal/forms"
	"projecthub/internal/log"
)

// handleDialog renders an empty create dialog. The payment dialog accepts
// ?project_id to preselect the project it was opened from.
func (s *Server) handleDialog(w http.ResponseWriter, r *http.Request) {
	kind, ok := forms.ParseKind(r.PathValue("kind"))
	if !ok {
		NotFoundError("Форма не найдена").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view := s.dialogView(ctx, kind, defaultDraft(kind, r.URL.Query()))
	s.render(w, r, http.StatusOK, "dialog", view)
}

// handleLines re-renders a dialog after an in-place edit: a line editor
// operation on project and estimate dialogs, or the payment type switch.
// Totals are recalculated from the posted inputs.
func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	kind, ok := forms.ParseKind(r.PathValue("kind"))
	if !ok || !(kind.HasItemLines() || kind == forms.KindPayment) {
		NotFoundError("Форма не найдена").Write(w)
		return
	}
	values, err := parseRequestValues(r)
	if err != nil {
		BadRequestError("Некорректный формат запроса").Write(w)
		return
	}
	op, err := forms.ParseLineOp(values)
	if err != nil {
		BadRequestError("Некорректная позиция").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	refs, refErr := forms.LoadReferences(ctx, s.refs, kind.Needs()...)

	var draft any
	switch kind {
	case forms.KindProject:
		d, _ := forms.BindProject(values)
		d.Items = op.ApplyItems(d.Items, refs.Items)
		d.Contractors = op.ApplyContractors(d.Contractors, refs.Contractors)
		draft = d
	case forms.KindEstimate:
		d, _ := forms.BindEstimate(values)
		d.Items = op.ApplyItems(d.Items, refs.Items)
		draft = d
	case forms.KindPayment:
		d, _ := forms.BindPayment(values)
		draft = d
	}

	view := newDialogView(kind, draft, refs)
	if refErr != nil {
		view.Warning = referenceWarning(ctx, kind, refErr)
	}
	s.render(w, r, http.StatusOK, "dialog", view)
}

// handleSubmit binds the dialog inputs and submits them once. Failures
// re-render the dialog with the inputs kept and a banner; success closes
// the dialog and refreshes the dashboard.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	kind, ok := forms.ParseKind(r.PathValue("kind"))
	if !ok {
		NotFoundError("Форма не найдена").Write(w)
		return
	}
	values, err := parseRequestValues(r)
	if err != nil {
		BadRequestError("Некорректный формат запроса").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	logger := log.FromContext(ctx).WithComponent(log.ComponentForms)

	draft, err := bindDraft(kind, values)
	var created core.Created
	if err == nil {
		created, err = s.submit(ctx, kind, draft)
	}
	if err != nil {
		status, message, fields := describeSubmitError(err)
		logger.WarnContext(ctx, "Form submission failed",
			log.FieldForm, string(kind),
			log.FieldStatusCode, status,
			log.FieldError, err)

		view := s.dialogView(ctx, kind, draft)
		view.Error = message
		for _, f := range fields {
			view.Invalid[f] = true
		}
		s.render(w, r, status, "dialog", view)
		return
	}

	logger.InfoContext(ctx, "Form submitted",
		log.FieldForm, string(kind),
		log.FieldEntity, kind.Action().Entity(),
		log.FieldEntityID, created.ID)

	message := "Сохранено: " + kind.Action().Label()
	body, err := s.renderString("dialog_success", struct {
		Kind    forms.Kind
		Created core.Created
		Message string
	}{kind, created, message})
	if err != nil {
		logger.ErrorContext(ctx, "Success template failed", log.FieldError, err)
	}
	NewHTMXResponse().
		TriggerDashboardRefresh(kind.Action().Entity()).
		TriggerFormReset().
		TriggerDialogClose().
		TriggerSuccessNotification(message).
		BodyHTML(body).
		Write(w)
}

// submit runs the dialog's form over draft. A success invalidates the
// reference lists the new record belongs to.
func (s *Server) submit(ctx context.Context, kind forms.Kind, draft forms.Draft) (core.Created, error) {
	onSuccess := func(core.Created) {
		s.refs.Invalidate(kind.Action())
	}
	switch d := draft.(type) {
	case core.CompanyDraft:
		return submitForm(ctx, s.submitter, func() core.CompanyDraft { return core.CompanyDraft{} }, d, onSuccess)
	case core.ContractorDraft:
		return submitForm(ctx, s.submitter, func() core.ContractorDraft { return core.ContractorDraft{} }, d, onSuccess)
	case core.ItemDraft:
		return submitForm(ctx, s.submitter, core.NewItemDraft, d, onSuccess)
	case core.ProjectDraft:
		return submitForm(ctx, s.submitter, core.NewProjectDraft, d, onSuccess)
	case core.EstimateDraft:
		return submitForm(ctx, s.submitter, core.NewEstimateDraft, d, onSuccess)
	case core.PaymentDraft:
		return submitForm(ctx, s.submitter, func() core.PaymentDraft { return core.NewPaymentDraft(0) }, d, onSuccess)
	default:
		return core.Created{}, fmt.Errorf("unsupported draft %T", draft)
	}
}

func submitForm[D forms.Draft](ctx context.Context, sub forms.Submitter, defaults func() D, draft D, onSuccess func(core.Created)) (core.Created, error) {
	f := forms.New(defaults, sub, onSuccess)
	f.Open()
	f.SetDraft(draft)
	return f.Submit(ctx)
}

// bindDraft reads the draft of kind from values. The draft is returned
// even when some inputs could not be parsed.
func bindDraft(kind forms.Kind, values url.Values) (forms.Draft, error) {
	switch kind {
	case forms.KindCompany:
		return forms.BindCompany(values), nil
	case forms.KindContractor:
		return forms.BindContractor(values)
	case forms.KindItem:
		return forms.BindItem(values)
	case forms.KindProject:
		return forms.BindProject(values)
	case forms.KindEstimate:
		return forms.BindEstimate(values)
	default:
		return forms.BindPayment(values)
	}
}

// defaultDraft is the draft a freshly opened dialog starts from.
func defaultDraft(kind forms.Kind, query url.Values) forms.Draft {
	switch kind {
	case forms.KindCompany:
		return core.CompanyDraft{}
	case forms.KindContractor:
		return core.ContractorDraft{}
	case forms.KindItem:
		return core.NewItemDraft()
	case forms.KindProject:
		return core.NewProjectDraft()
	case forms.KindEstimate:
		return core.NewEstimateDraft()
	default:
		projectID, _ := strconv.ParseInt(query.Get("project_id"), 10, 64)
		if projectID < 0 {
			projectID = 0
		}
		return core.NewPaymentDraft(projectID)
	}
}

// dialogView preloads the reference lists of kind. A failed preload still
// renders the dialog, with a warning instead of the lists.
func (s *Server) dialogView(ctx context.Context, kind forms.Kind, draft forms.Draft) dialogView {
	refs, err := forms.LoadReferences(ctx, s.refs, kind.Needs()...)
	view := newDialogView(kind, draft, refs)
	if err != nil {
		view.Warning = referenceWarning(ctx, kind, err)
	}
	return view
}

func referenceWarning(ctx context.Context, kind forms.Kind, err error) string {
	log.FromContext(ctx).WarnContext(ctx, "Reference lists unavailable",
		log.FieldForm, string(kind),
		log.FieldError, err)
	return "Не удалось загрузить справочники, списки могут быть пустыми"
}

func (s *Server) renderString(name string, data any) (string, error) {
	if s.templates == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
