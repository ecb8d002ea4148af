package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/mb0/dtm/key"
	"github.com/mb0/dtm/twin"
	"github.com/mb0/dtm/twinmem"
	"github.com/mb0/dtm/twinpgx"
	"github.com/mb0/dtm/twinweb"
)

const usage = `usage: dtm [-url=<url>] [-db=<string>] <command> [<args>]

Configuration flags:

   -url        The base url of the twin store service. The environment variable DTM_URL is
               used if this flag is not set.

   -db         The connection string of a mirror database. The environment variable DTM_DB
               is used if this flag is not set. Without url and db a demo fixture is used.

Codec commands
   key         Print the short element key for long element key text
   xref        Decode xref text into model urn and element key texts
   mkxref      Compose xref text from a model urn and long element key text
   split       Decode a blob of concatenated xref records

Other commands
   repl        Runs a read-eval-print-loop against the configured store
   help        Display help message
`

var (
	urlFlag = flag.String("url", "", "store service base url")
	dbFlag  = flag.String("db", "", "mirror database connection string")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	args := flag.Args()
	if len(args) == 0 {
		log.Printf("missing command\n\n")
		fmt.Print(usage)
		return
	}
	args = args[1:]
	var err error
	switch cmd := flag.Arg(0); cmd {
	case "key":
		err = keyCmd(args)
	case "xref":
		err = xrefCmd(args)
	case "mkxref":
		err = mkxrefCmd(args)
	case "split":
		err = splitCmd(args)
	case "repl":
		err = repl(args)
	case "help":
		fmt.Print(usage)
	default:
		log.Printf("unknown command %s\n\n", cmd)
		fmt.Print(usage)
	}
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func conf(flagged, env string) string {
	if flagged != "" {
		return flagged
	}
	return os.Getenv(env)
}

func openStore() (twin.Store, error) {
	if u := conf(*urlFlag, "DTM_URL"); u != "" {
		return twinweb.NewClient(u), nil
	}
	if d := conf(*dbFlag, "DTM_DB"); d != "" {
		db, err := twinpgx.Open(d, nil)
		if err != nil {
			return nil, err
		}
		return twinpgx.New(db), nil
	}
	return twinmem.Fixture(), nil
}

func keyCmd(args []string) error {
	if len(args) == 0 {
		return errors.New("key requires long key arguments")
	}
	for _, arg := range args {
		short, err := key.ToShort(arg)
		if err != nil {
			return err
		}
		fmt.Println(short)
	}
	return nil
}

func xrefCmd(args []string) error {
	if len(args) == 0 {
		return errors.New("xref requires xref arguments")
	}
	for _, arg := range args {
		x, err := key.DecodeXref(arg)
		if err != nil {
			return err
		}
		short, err := key.ToShort(x.Key)
		if err != nil {
			return err
		}
		fmt.Printf("model %s\nkey   %s\nshort %s\n", x.Model, x.Key, short)
	}
	return nil
}

func mkxrefCmd(args []string) error {
	if len(args) != 2 {
		return errors.New("mkxref requires model urn and long key arguments")
	}
	x, err := key.MakeXref(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(x)
	return nil
}

func splitCmd(args []string) error {
	if len(args) != 1 {
		return errors.New("split requires one blob argument")
	}
	models, keys, err := key.SplitXrefs(args[0])
	if err != nil {
		return err
	}
	for i := range models {
		fmt.Printf("%s %s\n", models[i], keys[i])
	}
	return nil
}
