package catalog

import (
	"slices"

	"github.com/aluiziolira/go-campaign-studio/models"
)

// State is the catalog view state. It is only changed through Reduce.
type State struct {
	Products       []models.Product
	Loading        bool
	InitialLoading bool
	Error          string
	SearchQuery    string
	Pagination     *models.Pagination
	HasMore        bool
}

// InitialState is the state of a freshly mounted catalog.
func InitialState() State {
	return State{
		Products:       []models.Product{},
		HasMore:        true,
		InitialLoading: true,
	}
}

// NoResults reports a settled fetch that returned nothing. It is distinct
// from the advisory error state.
func (s State) NoResults() bool {
	return !s.Loading && !s.InitialLoading && s.Error == "" && len(s.Products) == 0
}

// Clone returns a copy that shares no slices or pointers with s.
func (s State) Clone() State {
	out := s
	out.Products = slices.Clone(s.Products)
	if out.Products == nil {
		out.Products = []models.Product{}
	}
	if s.Pagination != nil {
		p := *s.Pagination
		out.Pagination = &p
	}
	return out
}

// Action is a state transition understood by Reduce.
type Action interface {
	action()
}

// FetchStart marks a fetch as in flight.
type FetchStart struct{}

// FetchSuccess merges or replaces products with a page result.
type FetchSuccess struct {
	Products   []models.Product
	Pagination models.Pagination
	Append     bool
}

// FetchError settles a fetch with an advisory message.
type FetchError struct {
	Message string
}

// SetSearchQuery replaces the search query.
type SetSearchQuery struct {
	Query string
}

// ResetProducts clears products and the cursor before a refetch.
type ResetProducts struct{}

// SetInitialLoading overrides the first-load flag.
type SetInitialLoading struct {
	Value bool
}

// DismissError clears the advisory message and keeps products.
type DismissError struct{}

func (FetchStart) action()        {}
func (FetchSuccess) action()      {}
func (FetchError) action()        {}
func (SetSearchQuery) action()    {}
func (ResetProducts) action()     {}
func (SetInitialLoading) action() {}
func (DismissError) action()      {}

// Reduce applies action to state and returns the next state. state is not
// modified; appended pages get a fresh backing array.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case FetchStart:
		state.Loading = true
		state.Error = ""

	case FetchSuccess:
		state.Loading = false
		state.InitialLoading = false
		if a.Append {
			merged := make([]models.Product, 0, len(state.Products)+len(a.Products))
			merged = append(merged, state.Products...)
			state.Products = append(merged, a.Products...)
		} else {
			state.Products = slices.Clone(a.Products)
			if state.Products == nil {
				state.Products = []models.Product{}
			}
		}
		pagination := a.Pagination
		state.Pagination = &pagination
		state.HasMore = pagination.HasMore()
		state.Error = ""

	case FetchError:
		state.Loading = false
		state.InitialLoading = false
		state.Error = a.Message

	case SetSearchQuery:
		state.SearchQuery = a.Query

	case ResetProducts:
		state.Products = []models.Product{}
		state.Pagination = nil
		state.HasMore = true

	case SetInitialLoading:
		state.InitialLoading = a.Value

	case DismissError:
		state.Error = ""
	}
	return state
}
