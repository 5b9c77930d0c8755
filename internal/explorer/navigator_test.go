package explorer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/regview/internal/registry"
)

func expectObject(reg *mockRegistry, path string, backLinks ...string) {
	reg.On("Object", mock.Anything, target(path)).Return(detailFor(path, backLinks...), nil)
}

func TestNavigator_StartShowsMain(t *testing.T) {
	nav, reg := newTestNavigator()

	require.Equal(t, StateMain, nav.State())
	require.Equal(t, "", nav.Fragment())
	require.Len(t, nav.Counts(), 4)
	info, ok := nav.Info()
	require.True(t, ok)
	require.Equal(t, "abc123", info.Commit)
	reg.AssertNumberOfCalls(t, "Index", 1)
}

func TestNavigator_ShortQueryNeverFetches(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := &mockRegistry{}
		nav := NewNavigator(context.Background(), NewIndexCache(reg), NewResolver(reg), Options{})

		query := rapid.StringMatching(`.?`).Draw(t, "query")
		drive(nav, nav.PerformSearch(query))

		require.Equal(t, StateMain, nav.State())
		reg.AssertNotCalled(t, "Index", mock.Anything)
		reg.AssertNotCalled(t, "Object", mock.Anything, mock.Anything)
	})
}

func TestNavigator_SearchPagesResults(t *testing.T) {
	nav, _ := newTestNavigator()

	drive(nav, nav.PerformSearch("route/"))

	require.Equal(t, StateSearch, nav.State())
	require.Equal(t, "?route/", nav.Fragment())
	require.Equal(t, "route/", nav.Query())
	require.Equal(t, 100, nav.Results().Len())
	require.True(t, nav.Results().Offered())

	require.True(t, nav.ShowMore())
	require.Equal(t, 200, nav.Results().Len())
	require.True(t, nav.ShowMore())
	require.Equal(t, 250, nav.Results().Len())
	require.False(t, nav.Results().Offered())
	require.False(t, nav.ShowMore())

	seen := map[registry.Target]bool{}
	for _, r := range nav.Results().Rows() {
		require.False(t, seen[r], "duplicate %s", r)
		seen[r] = true
	}
}

func TestNavigator_SearchNoResults(t *testing.T) {
	nav, reg := newTestNavigator()

	drive(nav, nav.PerformSearch("zzz_no_such_object"))

	require.Equal(t, StateSearch, nav.State())
	require.Zero(t, nav.Results().Len())
	require.Equal(t, "?zzz_no_such_object", nav.Fragment())
	reg.AssertNotCalled(t, "Object", mock.Anything, mock.Anything)
}

func TestNavigator_SingleResultAutoNavigates(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "dns/example.dn42")

	_, rev := nav.SearchText()
	drive(nav, nav.PerformSearch("example"))

	require.Equal(t, StateObject, nav.State())
	require.Equal(t, target("dns/example.dn42"), nav.Detail().Target())
	require.Equal(t, "/dns/example.dn42", nav.Fragment())
	_, after := nav.SearchText()
	require.Equal(t, rev, after, "auto navigation keeps the typed query")

	drive(nav, nav.PerformSearch("example.dn"))
	require.Equal(t, StateObject, nav.State())
	reg.AssertNumberOfCalls(t, "Object", 1)
}

func TestNavigator_DisplayObjectIsIdempotent(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "mntner/FOO-MNT")

	drive(nav, nav.DisplayObject(target("mntner/FOO-MNT")))
	require.Equal(t, StateObject, nav.State())
	require.Nil(t, nav.DisplayObject(target("mntner/FOO-MNT")))

	require.Equal(t, StateObject, nav.State())
	reg.AssertNumberOfCalls(t, "Object", 1)
}

func TestNavigator_DuplicateClickWhileLoading(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "mntner/FOO-MNT")

	cmd := nav.DisplayObject(target("mntner/FOO-MNT"))
	loading, ok := nav.Loading()
	require.True(t, ok)
	require.Equal(t, target("mntner/FOO-MNT"), loading)
	require.Nil(t, nav.DisplayObject(target("mntner/FOO-MNT")))

	drive(nav, cmd)
	require.Equal(t, StateObject, nav.State())
	reg.AssertNumberOfCalls(t, "Object", 1)
}

func TestNavigator_DiscardsStaleCompletion(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "mntner/FOO-MNT")
	expectObject(reg, "mntner/BAR-MNT")

	older := nav.DisplayObject(target("mntner/FOO-MNT"))
	newer := nav.DisplayObject(target("mntner/BAR-MNT"))

	drive(nav, newer)
	require.Equal(t, target("mntner/BAR-MNT"), nav.Detail().Target())

	drive(nav, older)
	require.Equal(t, StateObject, nav.State())
	require.Equal(t, target("mntner/BAR-MNT"), nav.Detail().Target())
	require.Equal(t, "/mntner/BAR-MNT", nav.Fragment())
}

func TestNavigator_FailureKeepsPreviousObject(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "mntner/FOO-MNT")
	reg.On("Object", mock.Anything, target("mntner/BAR-MNT")).
		Return(nil, fmt.Errorf("%w: HTTP 500", registry.ErrObjectFetch))

	drive(nav, nav.DisplayObject(target("mntner/FOO-MNT")))
	drive(nav, nav.DisplayObject(target("mntner/BAR-MNT")))

	require.Equal(t, StateError, nav.State())
	require.Equal(t, "Error fetching object", ErrorMessage(nav.Err()))
	require.Equal(t, target("mntner/FOO-MNT"), nav.Detail().Target())
	require.Equal(t, "/mntner/FOO-MNT", nav.Fragment())

	drive(nav, nav.DisplayObject(target("mntner/FOO-MNT")))
	require.Equal(t, StateObject, nav.State())
	require.NoError(t, nav.Err())
	reg.AssertNumberOfCalls(t, "Object", 2)
}

func TestNavigator_IndexFailureThenRetry(t *testing.T) {
	reg := &mockRegistry{}
	reg.On("Index", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	reg.On("Index", mock.Anything).Return(testIndex(), nil).Once()
	nav := NewNavigator(context.Background(), NewIndexCache(reg), NewResolver(reg), Options{})

	drive(nav, nav.Start(""))
	require.Equal(t, StateError, nav.State())
	require.ErrorIs(t, nav.Err(), registry.ErrIndexFetch)
	require.Equal(t, "Error fetching index", ErrorMessage(nav.Err()))

	drive(nav, nav.PerformSearch("AS"))
	require.Equal(t, StateSearch, nav.State())
	require.Equal(t, 2, nav.Results().Len())
	reg.AssertNumberOfCalls(t, "Index", 2)
}

func TestNavigator_NewerActionReplacesPending(t *testing.T) {
	reg := &mockRegistry{}
	reg.On("Index", mock.Anything).Return(testIndex(), nil)
	nav := NewNavigator(context.Background(), NewIndexCache(reg), NewResolver(reg), Options{})

	load := nav.PerformSearch("mnt")
	require.NotNil(t, load)
	require.Equal(t, StateWait, nav.State())
	require.Nil(t, nav.PerformSearch("AS"), "index load already in flight")

	drive(nav, load)
	require.Equal(t, StateSearch, nav.State())
	require.Equal(t, "AS", nav.Query())
	reg.AssertNumberOfCalls(t, "Index", 1)
}

func TestNavigator_BackRestoresMainWithoutFetch(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "route/172.20.5.0_24")

	drive(nav, nav.DisplayObject(target("route/172.20.5.0_24")))
	require.Equal(t, "/route/172.20.5.0_24", nav.Fragment())

	drive(nav, nav.Back())
	require.Equal(t, StateMain, nav.State())
	require.Equal(t, "", nav.Fragment())

	drive(nav, nav.Forward())
	require.Equal(t, StateObject, nav.State())
	require.Equal(t, target("route/172.20.5.0_24"), nav.Detail().Target())

	reg.AssertNumberOfCalls(t, "Object", 1)
	reg.AssertNumberOfCalls(t, "Index", 1)
}

func TestNavigator_BackRestoresSearch(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "mntner/FOO-MNT")

	drive(nav, nav.PerformSearch("mnt"))
	drive(nav, nav.DisplayObject(target("mntner/FOO-MNT")))
	require.Equal(t, 3, nav.History().Len())

	drive(nav, nav.Back())
	require.Equal(t, StateSearch, nav.State())
	require.Equal(t, "mnt", nav.Query())
	require.Equal(t, 2, nav.Results().Len())
	text, _ := nav.SearchText()
	require.Equal(t, "mnt", text)
	require.Equal(t, 3, nav.History().Len(), "replay does not push entries")

	reg.AssertNumberOfCalls(t, "Object", 1)
}

func TestNavigator_BackRestoresPreviousObject(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "mntner/FOO-MNT")
	expectObject(reg, "aut-num/AS4242420000")

	drive(nav, nav.DisplayObject(target("mntner/FOO-MNT")))
	drive(nav, nav.DisplayObject(target("aut-num/AS4242420000")))

	drive(nav, nav.Back())
	require.Equal(t, StateObject, nav.State())
	require.Equal(t, target("mntner/FOO-MNT"), nav.Detail().Target())
	require.Equal(t, "/mntner/FOO-MNT", nav.Fragment())

	drive(nav, nav.Forward())
	require.Equal(t, target("aut-num/AS4242420000"), nav.Detail().Target())
	reg.AssertNumberOfCalls(t, "Object", 2)
}

func TestNavigator_ExternalFragmentUnknownTarget(t *testing.T) {
	nav, reg := newTestNavigator()

	drive(nav, nav.History().Go("/route/nope"))

	require.Equal(t, StateError, nav.State())
	require.ErrorIs(t, nav.Err(), registry.ErrObjectNotFound)
	require.Equal(t, "Object not found: route/nope", ErrorMessage(nav.Err()))
	reg.AssertNotCalled(t, "Object", mock.Anything, mock.Anything)
}

func TestNavigator_ExternalFragmentObject(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "mntner/BAR-MNT")

	drive(nav, nav.History().Go("#/mntner/BAR-MNT"))
	require.Equal(t, StateObject, nav.State())
	require.Equal(t, "/mntner/BAR-MNT", nav.Fragment())
	require.Equal(t, 2, nav.History().Len())
	text, _ := nav.SearchText()
	require.Equal(t, "mntner/BAR-MNT", text)
}

func TestNavigator_UnrecognizedFragmentResetsToMain(t *testing.T) {
	nav, _ := newTestNavigator()
	drive(nav, nav.PerformSearch("mnt"))

	drive(nav, nav.History().Go("garbage"))

	require.Equal(t, StateMain, nav.State())
	require.Equal(t, "", nav.Fragment())
	text, _ := nav.SearchText()
	require.Empty(t, text)
}

func TestNavigator_StartWithFragment(t *testing.T) {
	t.Run("search", func(t *testing.T) {
		reg := &mockRegistry{}
		reg.On("Index", mock.Anything).Return(testIndex(), nil)
		nav := NewNavigator(context.Background(), NewIndexCache(reg), NewResolver(reg), Options{})

		drive(nav, nav.Start("#?aut-num/"))
		require.Equal(t, StateSearch, nav.State())
		require.Equal(t, 2, nav.Results().Len())
		require.Equal(t, 1, nav.History().Len())
	})

	t.Run("object", func(t *testing.T) {
		reg := &mockRegistry{}
		reg.On("Index", mock.Anything).Return(testIndex(), nil)
		expectObject(reg, "dns/example.dn42")
		nav := NewNavigator(context.Background(), NewIndexCache(reg), NewResolver(reg), Options{})

		drive(nav, nav.Start("/dns/example.dn42"))
		require.Equal(t, StateObject, nav.State())
		require.Equal(t, 1, nav.History().Len())
		require.False(t, nav.History().CanBack())
	})
}

func TestNavigator_CanonicalIdentityFromServer(t *testing.T) {
	nav, reg := newTestNavigator()
	reg.On("Object", mock.Anything, target("mntner/foo-mnt")).Return(detailFor("mntner/FOO-MNT"), nil)

	drive(nav, nav.DisplayObject(target("mntner/foo-mnt")))

	require.Equal(t, target("mntner/FOO-MNT"), nav.Detail().Target())
	require.Equal(t, "/mntner/FOO-MNT", nav.Fragment())
	text, _ := nav.SearchText()
	require.Equal(t, "mntner/FOO-MNT", text)
}

func TestNavigator_SupersededFragmentNotification(t *testing.T) {
	nav, _ := newTestNavigator()

	first := nav.PerformSearch("mnt")
	second := nav.PerformSearch("AS")
	require.Nil(t, nav.Update(first()))
	drive(nav, second)

	require.Equal(t, StateSearch, nav.State())
	require.Equal(t, "AS", nav.Query())
}

func TestNavigator_FollowLink(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "mntner/FOO-MNT")

	require.Nil(t, nav.FollowLink(Row{Value: "plain"}))
	require.Nil(t, nav.FollowLink(Row{Link: &Link{Target: target("mntner/FOO-MNT"), Self: true}}))

	drive(nav, nav.FollowLink(Row{Link: &Link{Target: target("mntner/FOO-MNT")}}))
	require.Equal(t, StateObject, nav.State())
	reg.AssertNumberOfCalls(t, "Object", 1)
}

func TestNavigator_SelectCategoryAndCopyTitle(t *testing.T) {
	nav, reg := newTestNavigator()
	expectObject(reg, "aut-num/AS4242420001")

	drive(nav, nav.SelectCategory("aut-num"))
	require.Equal(t, StateSearch, nav.State())
	text, _ := nav.SearchText()
	require.Equal(t, "aut-num/", text)

	drive(nav, nav.DisplayObject(target("aut-num/AS4242420001")))
	nav.CopyTitle()
	text, _ = nav.SearchText()
	require.Equal(t, "aut-num/AS4242420001", text)
}

func TestNavigator_BackLinksPaged(t *testing.T) {
	nav, reg := newTestNavigator()
	links := make([]string, 0, 150)
	for i := range 150 {
		links = append(links, fmt.Sprintf("route/172.20.%d.0_24", i))
	}
	expectObject(reg, "mntner/FOO-MNT", links...)

	drive(nav, nav.DisplayObject(target("mntner/FOO-MNT")))
	require.Equal(t, 100, nav.BackLinks().Len())
	require.True(t, nav.ShowAll())
	require.Equal(t, 150, nav.BackLinks().Len())
	require.False(t, nav.BackLinks().Offered())
	require.Len(t, nav.Rows(), 2)
}
