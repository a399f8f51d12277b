package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func printBanner(w io.Writer) {
	banner := `
  ___ _         _ _         _ _         ___      _           
 / __(_)_ __   (_) |__ _ _ (_) |_ _  _ | _ \__ _| |_ ___ _ _ 
 \__ \ | '  \  | | / _' | '_|| |  _| || ||   / _' |  _/ -_) '_|
 |___/_|_|_|_| |_|_\__,_|_|  |_|\__|\_, ||_|_\__,_|\__\___|_|  
                                    |__/                       
             Pairwise Audio Similarity Rating
`
	fmt.Fprintln(w, banner)
}
