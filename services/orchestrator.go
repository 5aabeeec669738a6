package services

import (
	"context"
	"fmt"
	"strings"

	"creatorpulse/cache"
	"creatorpulse/client"
	"creatorpulse/models"
	"creatorpulse/state"
	"creatorpulse/utils"
)

// Orchestrator issues the CRM mutations. Nothing is applied locally before
// the API acknowledges a call: success invalidates (or splices) the cached
// reads it affects, failure leaves every cache entry and selection as it was.
// Nothing is retried.
type Orchestrator struct {
	api     *client.Client
	fetcher *cache.Fetcher
	reader  *Reader
	audit   AuditRecorder
}

func NewOrchestrator(api *client.Client, fetcher *cache.Fetcher, reader *Reader, audit AuditRecorder) *Orchestrator {
	if audit == nil {
		audit = NewAuditRecorder(nil)
	}
	return &Orchestrator{api: api, fetcher: fetcher, reader: reader, audit: audit}
}

func (o *Orchestrator) record(ctx context.Context, sess *models.Session, action string, creatorID, clientID *int64, count int, detail string) {
	o.audit.Record(ctx, models.AuditEntry{
		Actor:     scope(sess),
		Action:    action,
		CreatorID: creatorID,
		ClientID:  clientID,
		Count:     count,
		Detail:    detail,
	})
}

func int64Ptr(v int64) *int64 {
	return &v
}

func (o *Orchestrator) UpdateStatus(ctx context.Context, sess *models.Session, page *state.Page, creatorID int64, update models.StatusUpdate) error {
	done, err := page.Flags.TryBegin(fmt.Sprintf("status:%d", creatorID))
	if err != nil {
		return err
	}
	defer done()

	if err := o.api.UpdateCreatorStatus(ctx, sess, creatorID, update); err != nil {
		return fmt.Errorf("update status of creator %d: %w", creatorID, err)
	}
	o.fetcher.Invalidate(cache.TagCreators)
	o.record(ctx, sess, "update_status", int64Ptr(creatorID), nil, 1, fmt.Sprintf("is_active=%t", update.IsActive))
	return nil
}

func (o *Orchestrator) UpdateClientStatus(ctx context.Context, sess *models.Session, page *state.Page, creatorID, clientID int64, update models.ClientStatusUpdate) error {
	if err := utils.ValidateStruct(update); err != nil {
		return err
	}
	done, err := page.Flags.TryBegin(fmt.Sprintf("client-status:%d:%d", creatorID, clientID))
	if err != nil {
		return err
	}
	defer done()

	if err := o.api.UpdateClientStatus(ctx, sess, creatorID, clientID, update); err != nil {
		return fmt.Errorf("update client %d status of creator %d: %w", clientID, creatorID, err)
	}
	o.fetcher.Invalidate(cache.TagCreators)
	o.record(ctx, sess, "update_client_status", int64Ptr(creatorID), int64Ptr(clientID), 1, update.Status)
	return nil
}

// UpdateOnboarding sends only the fields that are set. The creator echoed by
// the API is returned as the source of truth.
func (o *Orchestrator) UpdateOnboarding(ctx context.Context, sess *models.Session, page *state.Page, creatorID int64, update models.OnboardingUpdate) (models.Creator, error) {
	if !update.Stage.Valid() {
		return models.Creator{}, ErrInvalidStage
	}
	done, err := page.Flags.TryBegin(fmt.Sprintf("onboarding:%d", creatorID))
	if err != nil {
		return models.Creator{}, err
	}
	defer done()

	creator, err := o.api.UpdateOnboarding(ctx, sess, creatorID, update)
	if err != nil {
		return models.Creator{}, fmt.Errorf("update onboarding of creator %d: %w", creatorID, err)
	}
	o.fetcher.Invalidate(cache.TagCreators)
	o.record(ctx, sess, "update_onboarding", int64Ptr(creatorID), nil, 1, string(update.Stage))
	return creator, nil
}

// SendOutreach emails one creator. A creator that already has an outreach
// log for the client is refused unless req.Force is set.
func (o *Orchestrator) SendOutreach(ctx context.Context, sess *models.Session, page *state.Page, req models.OutreachRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	done, err := page.Flags.TryBegin(fmt.Sprintf("outreach:%d", req.CreatorID))
	if err != nil {
		return err
	}
	defer done()

	logs, err := o.reader.OutreachLogs(ctx, sess, &req.ClientID)
	if err != nil {
		return fmt.Errorf("load outreach logs: %w", err)
	}
	if contacted := contactedIn(logs, req.CreatorID); contacted {
		if !req.Force {
			return ErrAlreadyContacted
		}
		utils.LogEvent("outreach_forced_resend", map[string]interface{}{
			"actor":      scope(sess),
			"creator_id": req.CreatorID,
			"client_id":  req.ClientID,
		})
	}

	if err := o.api.SendOutreach(ctx, sess, req); err != nil {
		return fmt.Errorf("send outreach to creator %d: %w", req.CreatorID, err)
	}
	o.fetcher.Invalidate(cache.TagLogs)
	o.record(ctx, sess, "send_outreach", int64Ptr(req.CreatorID), int64Ptr(req.ClientID), 1, req.TemplateID)
	return nil
}

func contactedIn(logs []models.OutreachLog, creatorID int64) bool {
	for _, log := range logs {
		if log.CreatorID == creatorID {
			return true
		}
	}
	return false
}

// recipients falls back to the page selection when ids is empty.
func recipients(page *state.Page, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		ids = page.Selection.IDs()
	}
	if len(ids) == 0 {
		return nil, ErrNoRecipients
	}
	return ids, nil
}

// SendMassOutreach emails every selected creator. With a template id only the
// reference is sent; the API resolves subject and body per recipient. The
// selection is cleared on success only.
func (o *Orchestrator) SendMassOutreach(ctx context.Context, sess *models.Session, page *state.Page, req models.MassOutreachRequest) error {
	ids, err := recipients(page, req.CreatorIDs)
	if err != nil {
		return err
	}
	req.CreatorIDs = ids
	if req.TemplateID != "" {
		req.Subject, req.Body = "", ""
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	done, err := page.Flags.TryBegin("mass-email")
	if err != nil {
		return err
	}
	defer done()

	if err := o.api.SendMassOutreach(ctx, sess, req); err != nil {
		utils.LogError("mass_outreach_failed", err, map[string]interface{}{
			"actor":     scope(sess),
			"client_id": req.ClientID,
			"count":     len(ids),
		})
		return fmt.Errorf("send mass outreach: %w", err)
	}
	page.Selection.Remove(ids...)
	o.fetcher.Invalidate(cache.TagLogs)
	o.record(ctx, sess, "send_mass_outreach", nil, int64Ptr(req.ClientID), len(ids), req.TemplateID)
	return nil
}

// MarkContacted records outreach for the selected creators without sending mail.
func (o *Orchestrator) MarkContacted(ctx context.Context, sess *models.Session, page *state.Page, req models.MarkContactedRequest) error {
	ids, err := recipients(page, req.CreatorIDs)
	if err != nil {
		return err
	}
	req.CreatorIDs = ids
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	done, err := page.Flags.TryBegin("mark-contacted")
	if err != nil {
		return err
	}
	defer done()

	if err := o.api.MarkContacted(ctx, sess, req); err != nil {
		return fmt.Errorf("mark contacted: %w", err)
	}
	page.Selection.Remove(ids...)
	o.fetcher.Invalidate(cache.TagLogs)
	o.record(ctx, sess, "mark_contacted", nil, int64Ptr(req.ClientID), len(ids), "")
	return nil
}

// DeleteCreator removes a creator once the API confirms. The listing shown
// under listing is spliced in place; every other cached creator read is
// invalidated.
func (o *Orchestrator) DeleteCreator(ctx context.Context, sess *models.Session, page *state.Page, creatorID int64, listing *cache.Key) error {
	done, err := page.Flags.TryBegin(fmt.Sprintf("delete:%d", creatorID))
	if err != nil {
		return err
	}
	defer done()

	if err := o.api.DeleteCreator(ctx, sess, creatorID); err != nil {
		return fmt.Errorf("delete creator %d: %w", creatorID, err)
	}

	var shown []models.Creator
	found, peekErr := o.fetcher.Peek(listing, &shown)
	o.fetcher.Invalidate(cache.TagCreators)
	if peekErr == nil && found {
		kept := make([]models.Creator, 0, len(shown))
		for _, c := range shown {
			if c.ID != creatorID {
				kept = append(kept, c)
			}
		}
		if err := o.fetcher.Replace(listing, kept); err != nil {
			utils.Logger("orchestrator").WithError(err).Warn("could not splice deleted creator")
		}
	}
	page.Selection.Remove(creatorID)
	o.record(ctx, sess, "delete_creator", int64Ptr(creatorID), nil, 1, "")
	return nil
}

// CreatorEmails resolves the selected creators to "Name <email>" lines.
func (o *Orchestrator) CreatorEmails(ctx context.Context, sess *models.Session, page *state.Page, creatorIDs []int64) ([]string, error) {
	ids, err := recipients(page, creatorIDs)
	if err != nil {
		return nil, err
	}
	done, err := page.Flags.TryBegin("copy-emails")
	if err != nil {
		return nil, err
	}
	defer done()

	contacts, err := o.api.CreatorEmails(ctx, sess, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve creator emails: %w", err)
	}
	return utils.FormatContacts(contacts), nil
}

// Reply answers an inbox thread and refreshes the inbox.
func (o *Orchestrator) Reply(ctx context.Context, sess *models.Session, page *state.Page, req models.ReplyRequest) error {
	req.Reply = strings.TrimSpace(req.Reply)
	if req.Reply == "" {
		return ErrEmptyMessage
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	done, err := page.Flags.TryBegin("reply:" + req.EmailID)
	if err != nil {
		return err
	}
	defer done()

	if err := o.api.Reply(ctx, sess, req); err != nil {
		return fmt.Errorf("reply to %s: %w", req.EmailID, err)
	}
	o.fetcher.Invalidate(cache.TagInbox)
	o.record(ctx, sess, "reply", nil, nil, 1, req.EmailID)
	return nil
}
