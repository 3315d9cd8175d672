// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller holds the view state machine of an analysis session.
//
// The Controller knows nothing about terminals or HTTP. A shell feeds it
// events and performs the I/O it asks for:
//
//	sub, err := ctl.Submit(form)     // Input -> Loading
//	if err == nil {
//	    go func() {
//	        res, err := svc.Submit(ctx, sub.Request)
//	        // back on the event loop:
//	        if err != nil {
//	            ctl.Reject(sub.Seq, err) // Loading -> Error -> Input
//	        } else {
//	            ctl.Resolve(sub.Seq, res) // Loading -> Result
//	        }
//	    }()
//	}
//
// Every submission gets an increasing sequence number. Outcomes carrying
// any sequence other than the live one are dropped, so a superseded or
// expired request can never overwrite a newer result.
//
// # States
//
//	Input    collecting the form
//	Loading  one request is live
//	Result   a rendered document is shown
//	Error    transient; the user is notified and the form returns to Input
//
// A Controller is not safe for concurrent use. All events must be
// delivered from one goroutine, as a Bubble Tea Update loop does.
package controller
