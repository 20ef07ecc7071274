// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/mailbox"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/trade"
	"github.com/escrownet/escrowd/wallet"
)

// Context - everything one task invocation may touch
//
// Message is the trigger when the chain was started by an inbound
// protocol message, Envelope is additionally set when that message
// came out of the mailbox
type Context struct {
	Trade    *trade.Trade
	Store    *trade.Store
	Sender   *mailbox.Sender
	Mailbox  *mailbox.Store
	Signer   wallet.SigningService
	Message  network.Message
	Envelope *mailbox.Envelope

	OwnAddress network.Address
}

// Task - one step of a trade protocol chain
//
// a task signals exactly once through done: nil advances the chain,
// an error aborts it; tasks must tolerate re-running with the same
// trigger message
type Task struct {
	Name string
	Run  func(ctx *Context, done func(error))
}

// run tasks strictly in order
//
// after every completed task the trade is persisted, so a restart
// resumes from the last reached checkpoint; a failure attaches an
// operator visible fault to the trade and leaves the remaining tasks
// unexecuted; when the chain was fed from the mailbox the stored
// message is removed only after the whole chain succeeded
func runChain(log *logger.L, ctx *Context, tasks []Task, completion func(error)) {

	var step func(i int)
	step = func(i int) {
		if i >= len(tasks) {
			if nil != ctx.Envelope && nil != ctx.Mailbox {
				ctx.Mailbox.Remove(ctx.Envelope.Recipient, ctx.Envelope.Id)
			}
			completion(nil)
			return
		}

		task := tasks[i]
		log.Debugf("trade %s: running %s", ctx.Trade.Id, task.Name)

		signaled := false
		task.Run(ctx, func(err error) {
			if signaled {
				log.Criticalf("trade %s: task %s signaled twice", ctx.Trade.Id, task.Name)
				return
			}
			signaled = true

			if nil != err {
				log.Errorf("trade %s: task %s failed: %s", ctx.Trade.Id, task.Name, err)
				ctx.Trade.AddFault(task.Name + ": " + err.Error())
				saveTrade(log, ctx)
				completion(err)
				return
			}
			saveTrade(log, ctx)
			step(i + 1)
		})
	}
	step(0)
}

func saveTrade(log *logger.L, ctx *Context) {
	if nil == ctx.Store {
		return
	}
	if err := ctx.Store.Save(ctx.Trade); nil != err {
		log.Errorf("trade %s: persist error: %s", ctx.Trade.Id, err)
	}
}
