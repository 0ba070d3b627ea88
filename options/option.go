// File: options/option.go
// Package options implements the typed option kinds.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package options

import (
	"flag"
	"sort"
	"strings"
	"sync"
)

// Kind discriminates the supported option value shapes.
type Kind int

const (
	KindString Kind = iota
	KindList
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Option is the common contract of all option kinds.
type Option interface {
	Name() string
	Kind() Kind
	Description() string

	// Bind attaches the option to a flag set under its own name.
	Bind(fs *flag.FlagSet)

	// Current returns the live value in its natural Go shape
	// (string, []string, or sorted []string for sets).
	Current() any

	// Reset restores the default value.
	Reset()
}

// String is a single-valued string option.
type String struct {
	name string
	desc string
	def  string

	mu  sync.RWMutex
	val string
}

// NewString creates a string option seeded with its default.
func NewString(name, def, desc string) *String {
	return &String{name: name, desc: desc, def: def, val: def}
}

func (o *String) Name() string        { return o.name }
func (o *String) Kind() Kind          { return KindString }
func (o *String) Description() string { return o.desc }

// Get returns the current value.
func (o *String) Get() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.val
}

// Set replaces the current value.
func (o *String) Set(v string) {
	o.mu.Lock()
	o.val = v
	o.mu.Unlock()
}

func (o *String) Current() any { return o.Get() }

func (o *String) Reset() { o.Set(o.def) }

func (o *String) Bind(fs *flag.FlagSet) {
	fs.Func(o.name, o.desc, func(v string) error {
		o.Set(v)
		return nil
	})
}

// List is an ordered multi-valued string option. On the command line the
// flag may repeat, and each occurrence may carry comma-separated items.
type List struct {
	name string
	desc string
	def  []string

	mu  sync.RWMutex
	val []string
}

// NewList creates a list option seeded with a copy of its default.
func NewList(name string, def []string, desc string) *List {
	return &List{name: name, desc: desc, def: append([]string(nil), def...), val: append([]string(nil), def...)}
}

func (o *List) Name() string        { return o.name }
func (o *List) Kind() Kind          { return KindList }
func (o *List) Description() string { return o.desc }

// Get returns a copy of the current items in order.
func (o *List) Get() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.val...)
}

// Append adds items to the end of the list.
func (o *List) Append(items ...string) {
	o.mu.Lock()
	o.val = append(o.val, items...)
	o.mu.Unlock()
}

// Replace swaps the whole list.
func (o *List) Replace(items []string) {
	o.mu.Lock()
	o.val = append([]string(nil), items...)
	o.mu.Unlock()
}

func (o *List) Current() any { return o.Get() }

func (o *List) Reset() { o.Replace(o.def) }

func (o *List) Bind(fs *flag.FlagSet) {
	first := true
	fs.Func(o.name, o.desc, func(v string) error {
		// The first command-line occurrence replaces the default.
		if first {
			o.Replace(nil)
			first = false
		}
		o.Append(splitItems(v)...)
		return nil
	})
}

// Set is an unordered unique string option.
type Set struct {
	name string
	desc string
	def  []string

	mu  sync.RWMutex
	val map[string]struct{}
}

// NewSet creates a set option seeded with its default members.
func NewSet(name string, def []string, desc string) *Set {
	o := &Set{name: name, desc: desc, def: append([]string(nil), def...)}
	o.val = memberMap(def)
	return o
}

func (o *Set) Name() string        { return o.name }
func (o *Set) Kind() Kind          { return KindSet }
func (o *Set) Description() string { return o.desc }

// Has reports membership.
func (o *Set) Has(item string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.val[item]
	return ok
}

// Add inserts items, ignoring duplicates.
func (o *Set) Add(items ...string) {
	o.mu.Lock()
	for _, it := range items {
		o.val[it] = struct{}{}
	}
	o.mu.Unlock()
}

// Remove deletes items when present.
func (o *Set) Remove(items ...string) {
	o.mu.Lock()
	for _, it := range items {
		delete(o.val, it)
	}
	o.mu.Unlock()
}

// Members returns the sorted membership.
func (o *Set) Members() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, 0, len(o.val))
	for it := range o.val {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

func (o *Set) Current() any { return o.Members() }

func (o *Set) Reset() {
	o.mu.Lock()
	o.val = memberMap(o.def)
	o.mu.Unlock()
}

func (o *Set) Bind(fs *flag.FlagSet) {
	first := true
	fs.Func(o.name, o.desc, func(v string) error {
		if first {
			o.mu.Lock()
			o.val = make(map[string]struct{})
			o.mu.Unlock()
			first = false
		}
		o.Add(splitItems(v)...)
		return nil
	})
}

func splitItems(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func memberMap(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
