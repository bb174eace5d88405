package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emirpasic/gods/trees/avltree"
	"github.com/goforj/godump"
)

//
// A set of wrapper routines to the AVL package.  We do this to
// hide the AVL interface from the interpreter code.  The tree is
// keyed by statement number, so an in-order walk is the order the
// program runs in, whatever order the lines were typed in
//

func newProgramTree() *avltree.Tree {

	return avltree.NewWithIntComparator()
}

func (p *Program) stmtAvlTreeFirstInOrder() *avltree.Node {

	return p.program.Left()
}

func stmtAvlTreeNextInOrder(node *avltree.Node) *avltree.Node {

	if node == nil {
		return nil
	}

	return node.Next()
}

func stmtOf(node *avltree.Node) *stmtNode {

	basicAssert(node != nil, "nil program node")

	return node.Value.(*stmtNode)
}

func (p *Program) stmtAvlTreeLookup(stmtNo int) *stmtNode {

	v, found := p.program.Get(stmtNo)
	if !found {
		return nil
	}

	return v.(*stmtNode)
}

func (p *Program) stmtAvlTreeRemove(stmtNo int) {

	p.program.Remove(stmtNo)

	p.initializeRun()
}

//
// Adding a statement whose number is already in the tree replaces the
// old statement.  Any change to the program invalidates the state left
// over from the last run
//

func (p *Program) insertStmtNode(stmt *stmtNode) {

	p.program.Put(stmt.stmtNo, stmt)

	p.initializeRun()
}

// AddLine tokenizes one source line and stores it in the program.
// Blank lines are ignored.  A line holding only a line number deletes
// that line.  A line whose number is already present replaces it.
func (p *Program) AddLine(text string) error {

	if strings.TrimSpace(text) == "" {
		return nil
	}

	p.rawLines++

	err := call(func() {
		stmt := parseStmtLine(text, p.rawLines)

		if p.traceDump {
			godump.Dump(stmt)
		}

		if len(stmt.tokens) == 1 {
			p.log.Debug("line deleted", slog.Int("line", stmt.stmtNo))
			p.stmtAvlTreeRemove(stmt.stmtNo)
			return
		}

		p.log.Debug("line added", slog.Int("line", stmt.stmtNo),
			slog.Int("tokens", len(stmt.tokens)))

		p.insertStmtNode(stmt)
	})

	if err != nil {
		p.log.Debug("line rejected", slog.Int("raw", p.rawLines),
			slog.Any("error", err))
	}

	return err
}

// List writes the program, one normalized source line per statement,
// in line number order.
func (p *Program) List(w io.Writer) error {

	for node := p.stmtAvlTreeFirstInOrder(); node != nil; node = stmtAvlTreeNextInOrder(node) {
		if _, err := fmt.Fprintln(w, stmtOf(node).line); err != nil {
			return err
		}
	}

	return nil
}

// New erases the program and all run state.
func (p *Program) New() {

	p.program.Clear()
	p.rawLines = 0

	p.initializeRun()
}

// Len returns the number of stored lines.
func (p *Program) Len() int {

	return p.program.Size()
}
