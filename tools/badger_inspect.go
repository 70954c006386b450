package main

import (
	"chat-client/auth"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func main() {
	_ = godotenv.Load()
	dbPath := pflag.String("db", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")
	prefix := pflag.String("prefix", "auth:", "Prefix to scan")
	pflag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Size", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				table.Append([]string{key, fmt.Sprintf("%d", len(v)), describe(key, v)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe never prints the token itself, only what it resolves to.
func describe(key string, value []byte) string {
	switch {
	case strings.HasSuffix(key, ":token"):
		var token wrapperspb.StringValue
		if err := proto.Unmarshal(value, &token); err != nil {
			return "undecodable: " + err.Error()
		}
		claims, err := auth.DecodeToken(token.GetValue())
		if err != nil {
			return "malformed token: " + err.Error()
		}
		return "user id " + claims.Subject()
	case strings.HasSuffix(key, ":user"):
		var user wrapperspb.BytesValue
		if err := proto.Unmarshal(value, &user); err != nil {
			return "undecodable: " + err.Error()
		}
		return "display name " + auth.DisplayName(user.GetValue())
	default:
		return ""
	}
}
