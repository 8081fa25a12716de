// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package revision_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wikigraph/entitystore/revision"
)

func TestSoftDeleteIsReversible(t *testing.T) {
	ctx, service, _, _ := newService(t)

	_, err := service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q99004",
		Document:   document(t, `{"id":"Q99004","type":"item","labels":{"en":"x"}}`),
	})
	require.NoError(t, err)

	res, err := service.Delete(ctx, "Q99004", revision.DeleteSoft, "u")
	require.NoError(t, err)
	require.Equal(t, int64(2), res.RevisionID)
	require.True(t, res.IsDeleted)

	// Entity stays readable and the deletion is visible in the record.
	got, err := service.Get(ctx, "Q99004")
	require.NoError(t, err)
	require.Equal(t, int64(2), got.RevisionID)
	raw, err := service.GetRaw(ctx, "Q99004", 2)
	require.NoError(t, err)
	require.True(t, raw.IsDeleted)
	require.Equal(t, revision.EditSoftDelete, raw.EditType)

	// A later write undeletes.
	undeleted, err := service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q99004",
		Document:   document(t, `{"id":"Q99004","type":"item","labels":{"en":"x"}}`),
		EditType:   revision.EditUndelete,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), undeleted.RevisionID, "identical content must still advance past a deletion")
}

func TestHardDeleteIsTerminal(t *testing.T) {
	ctx, service, _, _ := newService(t)

	_, err := service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q99004",
		Document:   document(t, `{"id":"Q99004","type":"item"}`),
	})
	require.NoError(t, err)

	res, err := service.Delete(ctx, "Q99004", revision.DeleteHard, "u")
	require.NoError(t, err)
	require.Equal(t, int64(2), res.RevisionID)

	_, err = service.Get(ctx, "Q99004")
	require.True(t, revision.ErrGone.Has(err))

	_, err = service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q99004",
		Document:   document(t, `{"id":"Q99004","type":"item","labels":{"en":"y"}}`),
	})
	require.True(t, revision.ErrGone.Has(err))

	_, err = service.GetRaw(ctx, "Q99004", 1)
	require.True(t, revision.ErrGone.Has(err))

	_, err = service.History(ctx, "Q99004")
	require.True(t, revision.ErrGone.Has(err))

	_, err = service.Delete(ctx, "Q99004", revision.DeleteHard, "u")
	require.True(t, revision.ErrGone.Has(err))
}

func TestDeleteValidation(t *testing.T) {
	ctx, service, _, _ := newService(t)

	_, err := service.Delete(ctx, "Q404", revision.DeleteSoft, "u")
	require.True(t, revision.ErrNotFound.Has(err))

	_, err = service.Delete(ctx, "Q404", "medium", "u")
	require.True(t, revision.ErrBadRequest.Has(err))
}

func TestCreateRedirect(t *testing.T) {
	ctx, service, _, _ := newService(t)

	for _, id := range []string{"Q100", "Q42"} {
		_, err := service.Put(ctx, revision.WriteRequest{
			ExternalID: id,
			Document:   document(t, `{"id":"`+id+`","type":"item","labels":{"en":"x"}}`),
		})
		require.NoError(t, err)
	}

	res, err := service.CreateRedirect(ctx, "Q100", "Q42", "u")
	require.NoError(t, err)
	require.Equal(t, "Q100", res.RedirectFromID)
	require.Equal(t, "Q42", res.RedirectToID)
	require.Equal(t, int64(2), res.RevisionID)

	got, err := service.Get(ctx, "Q100")
	require.NoError(t, err)
	require.True(t, got.Flags.IsRedirect)
	require.Equal(t, "Q42", got.RedirectsTo)

	incoming, err := service.IncomingRedirects(ctx, "Q42")
	require.NoError(t, err)
	require.Equal(t, []string{"Q100"}, incoming)

	raw, err := service.GetRaw(ctx, "Q100", 2)
	require.NoError(t, err)
	require.True(t, raw.IsRedirect)
	require.Equal(t, "Q42", raw.RedirectsTo)
	require.Equal(t, revision.EditRedirectCreate, raw.EditType)

	// A second redirect from the same source conflicts.
	_, err = service.CreateRedirect(ctx, "Q100", "Q42", "u")
	require.True(t, revision.ErrConflict.Has(err))
}

func TestCreateRedirectValidation(t *testing.T) {
	ctx, service, _, _ := newService(t)

	_, err := service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q100",
		Document:   document(t, `{"id":"Q100","type":"item"}`),
	})
	require.NoError(t, err)

	_, err = service.CreateRedirect(ctx, "Q100", "Q100", "u")
	require.True(t, revision.ErrBadRequest.Has(err))

	_, err = service.CreateRedirect(ctx, "Q100", "Q404", "u")
	require.True(t, revision.ErrNotFound.Has(err))

	_, err = service.CreateRedirect(ctx, "Q404", "Q100", "u")
	require.True(t, revision.ErrNotFound.Has(err))

	// Locked target.
	_, err = service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q50",
		Document:   document(t, `{"id":"Q50","type":"item"}`),
		IsLocked:   true,
	})
	require.NoError(t, err)
	_, err = service.CreateRedirect(ctx, "Q100", "Q50", "u")
	require.True(t, revision.ErrLocked.Has(err))

	// Hard-deleted target.
	_, err = service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q60",
		Document:   document(t, `{"id":"Q60","type":"item"}`),
	})
	require.NoError(t, err)
	_, err = service.Delete(ctx, "Q60", revision.DeleteHard, "u")
	require.NoError(t, err)
	_, err = service.CreateRedirect(ctx, "Q100", "Q60", "u")
	require.True(t, revision.ErrLocked.Has(err))
}

func TestRevertRedirect(t *testing.T) {
	ctx, service, _, _ := newService(t)

	doc := `{"id":"Q100","type":"item","labels":{"en":{"language":"en","value":"original"}}}`
	_, err := service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q100",
		Document:   document(t, doc),
	})
	require.NoError(t, err)
	_, err = service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q42",
		Document:   document(t, `{"id":"Q42","type":"item"}`),
	})
	require.NoError(t, err)

	_, err = service.CreateRedirect(ctx, "Q100", "Q42", "u")
	require.NoError(t, err)

	res, err := service.RevertRedirect(ctx, "Q100", 1, "u")
	require.NoError(t, err)
	require.Equal(t, int64(3), res.RevisionID)
	require.Equal(t, document(t, doc), res.Document, "restored body equals revision 1")
	require.False(t, res.Flags.IsRedirect)
	require.Empty(t, res.RedirectsTo)

	got, err := service.Get(ctx, "Q100")
	require.NoError(t, err)
	require.False(t, got.Flags.IsRedirect)

	incoming, err := service.IncomingRedirects(ctx, "Q42")
	require.NoError(t, err)
	require.Empty(t, incoming)

	raw, err := service.GetRaw(ctx, "Q100", 3)
	require.NoError(t, err)
	require.Equal(t, revision.EditRedirectRevert, raw.EditType)
}

func TestRevertRedirectValidation(t *testing.T) {
	ctx, service, _, _ := newService(t)

	_, err := service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q100",
		Document:   document(t, `{"id":"Q100","type":"item"}`),
	})
	require.NoError(t, err)

	// Not a redirect.
	_, err = service.RevertRedirect(ctx, "Q100", 1, "u")
	require.True(t, revision.ErrNotFound.Has(err))
	require.Contains(t, err.Error(), "not a redirect")

	_, err = service.Put(ctx, revision.WriteRequest{
		ExternalID: "Q42",
		Document:   document(t, `{"id":"Q42","type":"item"}`),
	})
	require.NoError(t, err)
	_, err = service.CreateRedirect(ctx, "Q100", "Q42", "u")
	require.NoError(t, err)

	// Missing historical revision.
	_, err = service.RevertRedirect(ctx, "Q100", 17, "u")
	require.True(t, revision.ErrNotFound.Has(err))
}
