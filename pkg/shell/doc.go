/*
Package shell is the HTTP presentation shell of the intake workflow.

It owns no workflow logic: every route resolves the session's controller through
the session manager, invokes one action and renders the resulting view as JSON.

	GET  /chat                       redirect to a fresh session link
	GET  /chat?session=ID            current view
	POST /chat/{session}/email       {"email": "..."}
	POST /chat/{session}/classification {"classification": {...}, "projectClass": "standard"}
	POST /chat/{session}/autosave    {"field": "titel", "value": "..."}
	POST /chat/{session}/form        {"values": {...}, "issues": [...]}
	POST /chat/{session}/review/confirm
	POST /chat/{session}/review/edit
	POST /chat/{session}/new         redirect to a fresh session link

Every error response still carries the view, so a client always has an action to offer.
*/
package shell
