// Package interaction owns the interactive state of an organization chart:
// which hierarchy is loaded, which subtrees are collapsed, where the user has
// dragged nodes and how the viewport is panned and zoomed.
//
// # Event Model
//
// A [Controller] is driven from a single event loop. Pointer and keyboard
// handlers mutate state and mark the frame dirty; [Controller.Frame] then
// runs at most one layout pass no matter how many mutations happened since
// the last frame. Hit-testing between frames reuses the same pass.
//
// # Loading
//
// Hierarchy fetches run outside the controller. [Controller.BeginLoad]
// issues a [Request] with a monotonically increasing token and
// [Controller.CompleteLoad] applies a result only when its token is the
// latest one, so a slow response for a previous organization or view mode
// can never overwrite a newer one.
//
//	req := ctrl.BeginLoad()
//	go func() {
//	    root, err := loader.Load(ctx, req.OrganizationID, req.ViewMode)
//	    results <- result{req.Token, root, err}
//	}()
//	...
//	ctrl.CompleteLoad(r.token, r.root, r.err)
//
// # Read-Only Mode
//
// When [ViewConfig.ReadOnly] is set, dragging a node pans the canvas
// instead of moving the node. Collapse, expand, pan and zoom stay available.
package interaction
