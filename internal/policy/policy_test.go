package policy

import (
	"testing"

	"github.com/newsdesk/newsroom/internal/domain"

	"github.com/google/uuid"
)

var (
	authorID = uuid.New()
	otherID  = uuid.New()
)

func principal(role domain.Role, id uuid.UUID) domain.Principal {
	return domain.Principal{ID: id, Role: role}
}

func article(status domain.Status) domain.Article {
	return domain.Article{ID: uuid.New(), AuthorID: authorID, Status: status}
}

func TestCanCreate(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleReporter, domain.RoleEditor, domain.RoleAdmin} {
		if !CanCreate(principal(role, otherID)) {
			t.Errorf("%s should be able to create", role)
		}
	}
	if CanCreate(domain.Principal{}) {
		t.Error("principal without a role must not create")
	}
}

func TestCanUpdate(t *testing.T) {
	tests := []struct {
		name   string
		p      domain.Principal
		status domain.Status
		want   bool
	}{
		{"author edits own draft", principal(domain.RoleReporter, authorID), domain.StatusDraft, true},
		{"author edits own rejected", principal(domain.RoleReporter, authorID), domain.StatusRejected, true},
		{"author blocked while pending", principal(domain.RoleReporter, authorID), domain.StatusPendingApproval, false},
		{"author blocked while published", principal(domain.RoleReporter, authorID), domain.StatusPublished, false},
		{"author blocked while scheduled", principal(domain.RoleReporter, authorID), domain.StatusScheduled, false},
		{"other reporter blocked", principal(domain.RoleReporter, otherID), domain.StatusDraft, false},
		{"editor edits anything", principal(domain.RoleEditor, otherID), domain.StatusPublished, true},
		{"admin edits anything", principal(domain.RoleAdmin, otherID), domain.StatusPendingApproval, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanUpdate(tt.p, article(tt.status)); got != tt.want {
				t.Errorf("CanUpdate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanSubmitIsAuthorOnly(t *testing.T) {
	a := article(domain.StatusDraft)

	if !CanSubmit(principal(domain.RoleReporter, authorID), a) {
		t.Error("author must be able to submit")
	}
	// Editorial rank does not substitute for ownership here.
	if CanSubmit(principal(domain.RoleEditor, otherID), a) {
		t.Error("editor who is not the author must not submit")
	}
	if CanSubmit(principal(domain.RoleAdmin, otherID), a) {
		t.Error("admin who is not the author must not submit")
	}
}

func TestEditorialPredicates(t *testing.T) {
	editor := principal(domain.RoleEditor, otherID)
	admin := principal(domain.RoleAdmin, otherID)
	reporter := principal(domain.RoleReporter, authorID)

	for name, predicate := range map[string]func(domain.Principal) bool{
		"CanApprove":      CanApprove,
		"CanReject":       CanReject,
		"CanRollback":     CanRollback,
		"CanListVersions": CanListVersions,
	} {
		if !predicate(editor) || !predicate(admin) {
			t.Errorf("%s must allow editors and admins", name)
		}
		if predicate(reporter) {
			t.Errorf("%s must deny reporters, even the author", name)
		}
	}
}

func TestCanDeleteIsAdminOnly(t *testing.T) {
	if !CanDelete(principal(domain.RoleAdmin, otherID)) {
		t.Error("admin must be able to delete")
	}
	if CanDelete(principal(domain.RoleEditor, otherID)) {
		t.Error("editor must not delete")
	}
	if CanDelete(principal(domain.RoleReporter, authorID)) {
		t.Error("reporter must not delete, even the author")
	}
}

func TestCanView(t *testing.T) {
	author := principal(domain.RoleReporter, authorID)
	stranger := principal(domain.RoleReporter, otherID)
	editor := principal(domain.RoleEditor, otherID)

	published := article(domain.StatusPublished)
	draft := article(domain.StatusDraft)

	if !CanView(nil, published) {
		t.Error("published articles are public")
	}
	if CanView(nil, draft) {
		t.Error("drafts are hidden from anonymous readers")
	}
	if !CanView(&author, draft) {
		t.Error("author sees their own draft")
	}
	if CanView(&stranger, draft) {
		t.Error("another reporter must not see the draft")
	}
	if !CanView(&editor, draft) {
		t.Error("editor sees every draft")
	}
}
