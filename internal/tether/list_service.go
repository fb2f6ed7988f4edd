// Package tether implements the reconciliation core that keeps a local todo
// list consistent with its mirrored GitHub issues.
package tether

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/colonyops/tether/internal/core/overlay"
	"github.com/colonyops/tether/internal/core/todo"
	"github.com/colonyops/tether/internal/core/validate"
	"github.com/colonyops/tether/internal/github"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Action identifies which mutation a confirmation request belongs to.
type Action string

const (
	ActionToggle Action = "toggle"
	ActionDelete Action = "delete"
)

// ConfirmationRequest asks the caller to resolve a mutation that would also
// change remote issue state. Nothing has been mutated when one is returned;
// the caller picks a resolution path (with or without the remote update) or
// drops the action.
type ConfirmationRequest struct {
	Action     Action               `json:"action"`
	Item       todo.Item            `json:"item"`
	IssueState todo.IssueState      `json:"issue_state,omitempty"`
	Reasons    []github.StateReason `json:"reasons"`
}

// Decision is the outcome of the toggle/delete protocol: either the mutation
// was applied immediately, or a confirmation is pending.
type Decision struct {
	Applied      bool
	Confirmation *ConfirmationRequest
}

// ListService owns the authoritative item list and drives reconciliation
// with the remote issue tracker.
//
// All methods must run on a single logical thread of control; the service
// holds no locks of its own. The only internal parallelism is the issue
// state fetch pass, which forks one goroutine per linked item and joins them
// before returning.
type ListService struct {
	store   todo.Store
	ops     *IssueOpService // nil disables remote integration
	overlay *overlay.Overlay
	log     zerolog.Logger

	// items is the authoritative list; current is the display snapshot
	// (items paired with the states observed by the last fetch pass).
	items   []todo.Item
	current []todo.ItemWithIssueState
	opState OpState
}

// NewListService creates a reconciliation core over store. ops may be nil
// when no remote integration is configured.
func NewListService(store todo.Store, ops *IssueOpService, log zerolog.Logger) *ListService {
	return &ListService{
		store:   store,
		ops:     ops,
		overlay: overlay.New(),
		log:     log.With().Str("component", "list-service").Logger(),
		opState: OpState{Phase: OpIdle},
	}
}

// Overlay exposes the session overlay for read-side presentation helpers.
func (s *ListService) Overlay() *overlay.Overlay {
	return s.overlay
}

// OpState reports the most recent remote issue operation.
func (s *ListService) OpState() OpState {
	return s.opState
}

// Load reads all items from the store and refreshes their issue states. A
// storage failure degrades to an empty list rather than failing the pass.
// The session overlay is left untouched; use Refresh for that.
func (s *ListService) Load(ctx context.Context) []todo.ItemWithIssueState {
	items, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("load items from storage")
		items = nil
	}
	s.items = items

	return s.fetchIssueStates(ctx)
}

// Refresh clears the session overlay, then reloads. This is the only way the
// overlay is ever cleared; it is the session boundary.
func (s *ListService) Refresh(ctx context.Context) []todo.ItemWithIssueState {
	s.overlay.Clear()
	return s.Load(ctx)
}

// fetchIssueStates fetches the remote state of every linked item in parallel
// and projects the results back in list order, so network completion order
// never leaks into display order. Per-item failures degrade that item to
// unknown; they never fail the pass.
func (s *ListService) fetchIssueStates(ctx context.Context) []todo.ItemWithIssueState {
	states := make(map[string]todo.IssueState, len(s.items))

	if s.ops != nil {
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)

		for _, item := range s.items {
			if !item.HasIssue() {
				continue
			}

			wg.Add(1)
			go func(item todo.Item) {
				defer wg.Done()

				state, err := s.ops.FetchState(ctx, item)
				if err != nil {
					s.log.Warn().Err(err).Str("id", item.ID).Msg("fetch issue state")
					return
				}

				mu.Lock()
				states[item.ID] = state
				mu.Unlock()
			}(item)
		}

		wg.Wait()
	}

	out := make([]todo.ItemWithIssueState, len(s.items))
	for i, item := range s.items {
		out[i] = todo.ItemWithIssueState{Item: item, IssueState: states[item.ID]}
	}
	s.current = out

	return out
}

// Add creates a new item. When createIssue is set, the remote issue is
// created before anything is stored; if that fails, nothing is stored and
// the error is returned.
func (s *ListService) Add(ctx context.Context, title, detail string, createIssue bool) (todo.Item, error) {
	if err := validate.TitleField("title", title); err != nil {
		return todo.Item{}, err
	}

	now := time.Now()
	item := todo.Item{
		ID:        uuid.NewString(),
		Title:     title,
		Detail:    detail,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if createIssue {
		if s.ops == nil {
			return todo.Item{}, github.ErrNotSupported
		}
		issue, err := s.ops.Create(ctx, item)
		if err != nil {
			return todo.Item{}, err
		}
		item.IssueURL = issue.HTMLURL
	}

	s.items = append(s.items, item)
	err := s.save(ctx)
	s.reproject()

	return item, err
}

// Update replaces the stored item by id and bumps UpdatedAt. Content changes
// are not propagated to a linked issue; callers drive that separately
// through the IssueOpService.
func (s *ListService) Update(ctx context.Context, item todo.Item) error {
	idx := s.indexOf(item.ID)
	if idx < 0 {
		return todo.ErrNotFound
	}

	item.UpdatedAt = time.Now()
	s.items[idx] = item

	err := s.save(ctx)
	s.reproject()
	return err
}

// LinkIssue creates a remote issue for an existing unlinked item and
// attaches its URL. Re-linking an already linked item replaces the URL.
func (s *ListService) LinkIssue(ctx context.Context, id string) (todo.Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return todo.Item{}, todo.ErrNotFound
	}
	if s.ops == nil {
		return todo.Item{}, github.ErrNotSupported
	}

	issue, err := s.ops.Create(ctx, s.items[idx])
	if err != nil {
		return todo.Item{}, err
	}

	s.items[idx].IssueURL = issue.HTMLURL
	s.items[idx].UpdatedAt = time.Now()

	err = s.save(ctx)
	s.reproject()
	return s.items[idx], err
}

// Get returns the item with the given id from the authoritative list.
func (s *ListService) Get(id string) (todo.Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return todo.Item{}, todo.ErrNotFound
	}
	return s.items[idx], nil
}

// Toggle flips an item's done state, or returns a confirmation request when
// doing so would also change the linked issue's state. Unknown remote state
// requests confirmation: assuming a remote change is needed is the safe
// default.
func (s *ListService) Toggle(ctx context.Context, item todo.Item) (Decision, error) {
	if item.HasIssue() {
		state := s.stateOf(item.ID)
		if wouldChangeIssueState(item, state) {
			return Decision{Confirmation: &ConfirmationRequest{
				Action:     ActionToggle,
				Item:       item,
				IssueState: state,
				Reasons:    toggleReasons(item),
			}}, nil
		}
	}

	// No remote change implied: apply silently. Flipping (not marking)
	// means a second toggle in the same session undoes the overlay mark.
	s.overlay.FlipToggled(item.ID)
	return Decision{Applied: true}, s.toggleDone(ctx, item.ID)
}

// ToggleWithIssueUpdate resolves a toggle confirmation by committing the
// local toggle and then flipping the linked issue's state with the given
// reason. The remote call is best-effort: on failure the local mutation
// stands, and the failure is recorded in OpState and returned.
func (s *ListService) ToggleWithIssueUpdate(ctx context.Context, item todo.Item, reason github.StateReason) error {
	s.opState = OpState{Phase: OpInProgress}
	s.overlay.MarkToggled(item.ID)

	if err := s.toggleDone(ctx, item.ID); err != nil {
		s.opState = OpState{Phase: OpFailed, Err: err}
		return err
	}

	if s.ops != nil {
		if err := s.ops.ToggleState(ctx, item, reason); err != nil {
			s.log.Error().Err(err).Str("id", item.ID).Msg("update issue state")
			s.opState = OpState{Phase: OpFailed, Err: err}
			return err
		}
	}

	s.opState = OpState{Phase: OpSucceeded}
	return nil
}

// ToggleWithoutIssueUpdate resolves a toggle confirmation by committing the
// local toggle only.
func (s *ListService) ToggleWithoutIssueUpdate(ctx context.Context, item todo.Item) error {
	s.overlay.MarkToggled(item.ID)
	return s.toggleDone(ctx, item.ID)
}

// Delete removes an item, or returns a confirmation request when the linked
// issue is not already closed. As with Toggle, unknown remote state is
// treated as needing confirmation.
func (s *ListService) Delete(ctx context.Context, item todo.Item) (Decision, error) {
	if item.HasIssue() && s.stateOf(item.ID) != todo.StateClosed {
		return Decision{Confirmation: &ConfirmationRequest{
			Action:     ActionDelete,
			Item:       item,
			IssueState: s.stateOf(item.ID),
			Reasons:    github.CloseReasons(),
		}}, nil
	}

	return Decision{Applied: true}, s.deleteItem(ctx, item.ID)
}

// DeleteAndCloseIssue resolves a delete confirmation by committing the local
// delete and then closing the linked issue. Local intent wins: a remote
// failure is recorded and returned, never rolled back.
func (s *ListService) DeleteAndCloseIssue(ctx context.Context, item todo.Item, reason github.StateReason) error {
	s.opState = OpState{Phase: OpInProgress}

	if err := s.deleteItem(ctx, item.ID); err != nil {
		s.opState = OpState{Phase: OpFailed, Err: err}
		return err
	}

	if s.ops != nil {
		if err := s.ops.CloseWithReason(ctx, item, reason); err != nil {
			s.log.Error().Err(err).Str("id", item.ID).Msg("close issue")
			s.opState = OpState{Phase: OpFailed, Err: err}
			return err
		}
	}

	s.opState = OpState{Phase: OpSucceeded}
	return nil
}

// DeleteWithoutClosingIssue resolves a delete confirmation by committing the
// local delete only.
func (s *ListService) DeleteWithoutClosingIssue(ctx context.Context, item todo.Item) error {
	return s.deleteItem(ctx, item.ID)
}

// Clear wipes the stored collection, the in-memory list, and the overlay.
func (s *ListService) Clear(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete all items: %w", err)
	}

	s.items = nil
	s.current = nil
	s.overlay.Clear()
	return nil
}

// Active returns the active display list: items whose authoritative done
// flag is false, plus items checked this session, minus session deletions.
func (s *ListService) Active() []todo.ItemWithIssueState {
	return s.displayed(false)
}

// Done returns the done display list, derived with the same rule as Active
// but for the opposite polarity.
func (s *ListService) Done() []todo.ItemWithIssueState {
	return s.displayed(true)
}

// displayed applies the display-set derivation rule for one polarity: keep
// items whose done flag matches, plus opposite-polarity items toggled this
// session, dropping anything deleted this session. A just-toggled item thus
// stays visible in its origin list, with its new done flag, until the next
// refresh. Sorted newest first.
func (s *ListService) displayed(done bool) []todo.ItemWithIssueState {
	out := make([]todo.ItemWithIssueState, 0, len(s.current))
	for _, it := range s.current {
		if s.overlay.IsDeleted(it.Item.ID) {
			continue
		}
		if it.Item.Done == done || s.overlay.IsToggled(it.Item.ID) {
			out = append(out, it)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Item.CreatedAt.After(out[j].Item.CreatedAt)
	})

	return out
}

// toggleDone flips the stored done flag and persists. A save failure is
// surfaced but the in-memory mutation stands.
func (s *ListService) toggleDone(ctx context.Context, id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return todo.ErrNotFound
	}

	s.items[idx].Done = !s.items[idx].Done
	s.items[idx].UpdatedAt = time.Now()

	err := s.save(ctx)
	s.reproject()
	return err
}

// deleteItem marks the id deleted for the session, removes it from the
// authoritative list, and persists.
func (s *ListService) deleteItem(ctx context.Context, id string) error {
	s.overlay.MarkDeleted(id)

	idx := s.indexOf(id)
	if idx < 0 {
		return todo.ErrNotFound
	}
	s.items = slices.Delete(s.items, idx, idx+1)

	err := s.save(ctx)
	s.reproject()
	return err
}

func (s *ListService) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.items); err != nil {
		s.log.Error().Err(err).Msg("save items to storage")
		return fmt.Errorf("save items: %w", err)
	}
	return nil
}

// reproject rebuilds the display snapshot from the authoritative list,
// keeping the issue states observed by the last fetch pass. No network.
func (s *ListService) reproject() {
	known := make(map[string]todo.IssueState, len(s.current))
	for _, it := range s.current {
		known[it.Item.ID] = it.IssueState
	}

	out := make([]todo.ItemWithIssueState, len(s.items))
	for i, item := range s.items {
		out[i] = todo.ItemWithIssueState{Item: item, IssueState: known[item.ID]}
	}
	s.current = out
}

// stateOf returns the issue state observed for the item by the last fetch
// pass, unknown if the item was not part of it.
func (s *ListService) stateOf(id string) todo.IssueState {
	for _, it := range s.current {
		if it.Item.ID == id {
			return it.IssueState
		}
	}
	return todo.StateUnknown
}

func (s *ListService) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(item todo.Item) bool {
		return item.ID == id
	})
}

// wouldChangeIssueState reports whether flipping the item's done flag
// implies a remote state change. Checking implies closing, so it is safe
// only when the issue is already closed; unchecking implies reopening, safe
// only when already open. Unknown state counts as a change.
func wouldChangeIssueState(item todo.Item, state todo.IssueState) bool {
	if item.Done {
		return state != todo.StateOpen
	}
	return state != todo.StateClosed
}

// toggleReasons is the reason menu offered when a toggle needs confirmation.
// Checking closes the issue, so the full close vocabulary applies;
// unchecking reopens, which carries no reason of its own.
func toggleReasons(item todo.Item) []github.StateReason {
	if item.Done {
		return []github.StateReason{github.ReasonReopened}
	}
	return github.CloseReasons()
}
