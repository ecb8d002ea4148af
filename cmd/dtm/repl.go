package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/peterh/liner"

	"github.com/mb0/dtm/ref"
	"github.com/mb0/dtm/sch"
	"github.com/mb0/dtm/twin"
)

const replHelp = `repl commands:
   key <long>...             print short keys
   xref <text>...            decode xrefs
   el <model> <short>...     fetch and print elements
   ref <model> <prop> <short>...
                             resolve the references held in prop
   help                      print this message
   exit                      leave the repl
`

func repl(args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	cache := sch.New(store)
	lin := liner.NewLiner()
	defer lin.Close()
	lin.SetMultiLineMode(true)
	for {
		got, err := lin.Prompt("> ")
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			log.Printf("unexpected error reading prompt: %v", err)
			continue
		}
		got = strings.TrimSpace(got)
		if got == "" {
			continue
		}
		lin.AppendHistory(got)
		fields := strings.Fields(got)
		cmd, rest := fields[0], fields[1:]
		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Print(replHelp)
		case "key":
			err = keyCmd(rest)
		case "xref":
			err = xrefCmd(rest)
		case "mkxref":
			err = mkxrefCmd(rest)
		case "split":
			err = splitCmd(rest)
		case "el":
			err = elCmd(store, cache, rest)
		case "ref":
			err = refCmd(store, rest)
		default:
			log.Printf("unknown command %s", cmd)
			continue
		}
		if err != nil {
			log.Printf("%s error: %v", cmd, err)
		}
	}
}

func elCmd(store twin.Store, cache *sch.Cache, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("el requires model and short key arguments")
	}
	model := args[0]
	els, err := store.ElementsByKey(model, args[1:])
	if err != nil {
		return err
	}
	for _, el := range els {
		fmt.Printf("%s %s (%s)\n", el.Key, el.Name(), el.Category())
		for id, vs := range el.Props {
			fmt.Printf("   %-24s %s\n", cache.DisplayName(model, id), strings.Join(vs, ", "))
		}
	}
	return nil
}

func refCmd(store twin.Store, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("ref requires model, property and short key arguments")
	}
	model, prop := args[0], args[1]
	els, err := store.ElementsByKey(model, args[2:])
	if err != nil {
		return err
	}
	res := ref.Resolve(els, ref.Rule{prop}, store)
	for _, el := range els {
		if ent, ok := res.Resolved(el.Key); ok {
			fmt.Printf("%s -> %s (%s)\n", el.Key, ent.Name, ent.Type)
		} else {
			fmt.Printf("%s -> unresolved\n", el.Key)
		}
	}
	for model, err := range res.Failed {
		fmt.Printf("fetch failed for %s: %v\n", model, err)
	}
	return nil
}
