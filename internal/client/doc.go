// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client talks to the remote bazi analysis service.
//
// Submit performs one analysis round-trip and returns the decoded result
// payload. The side channels (PDF export, remote AI status and
// configuration, health) are independent calls that never touch view
// state; callers run them concurrently with an analysis if they like.
//
// Every failure is a *ClientError whose UserMessage is safe to show:
//
//	res, err := c.Submit(ctx, req)
//	if err != nil {
//	    var ce *client.ClientError
//	    if errors.As(err, &ce) {
//	        fmt.Println(ce.UserMessage())
//	    }
//	}
//
// The client is safe for concurrent use.
package client
