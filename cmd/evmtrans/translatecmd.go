package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/core/translator"
)

var translateCommand = &cli.Command{
	Action:    translateCmd,
	Name:      "translate",
	Usage:     "Translate bytecode and print the program",
	ArgsUsage: "[<hex code>]",
	Flags:     append([]cli.Flag{OutputFlag, QuietFlag}, codeFlags...),
	Description: `
The translate command lowers EVM bytecode into rWasm instructions and prints
the disassembly together with the static gas, the jump destinations and the
relocated jumps. With --out the binary encoding of the program is written to
a file.`,
}

func callName(fn int64) string {
	return translator.OpCode(fn).String()
}

func translateCmd(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	code, err := codeFromContext(ctx)
	if err != nil {
		return err
	}
	res, err := translator.Translate(code, translator.NewHost(cfg, nil))
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	if !ctx.Bool(QuietFlag.Name) {
		fmt.Fprint(w, res.Instructions.Disassemble(callName))
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "status:       %v\n", res.Status)
	if res.Status == translator.StatusOpcodeNotFound {
		fmt.Fprintf(w, "stop pc:      %d\n", res.StopPC)
	}
	fmt.Fprintf(w, "instructions: %d\n", res.Instructions.Len())
	fmt.Fprintf(w, "static gas:   %d\n", res.GasUsed)

	if len(res.JumpDests) > 0 {
		pcs := maps.Keys(res.JumpDests)
		slices.Sort(pcs)
		data := make([][]string, 0, len(pcs))
		for _, pc := range pcs {
			data = append(data, []string{strconv.FormatUint(pc, 10), strconv.Itoa(res.JumpDests[pc])})
		}
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Jumpdest", "Offset"})
		table.AppendBulk(data)
		table.Render()
	}
	if len(res.Relocations) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Kind", "From", "To", "Site", "Target"})
		for _, r := range res.Relocations {
			table.Append([]string{
				r.Kind.String(),
				strconv.FormatUint(r.PCFrom, 10),
				strconv.FormatUint(r.PCTo, 10),
				strconv.Itoa(r.Site),
				strconv.Itoa(res.Instructions.BranchTarget(r.Site)),
			})
		}
		table.Render()
	}

	if out := ctx.String(OutputFlag.Name); out != "" {
		if err := os.WriteFile(out, rwasm.Encode(res.Instructions), 0o644); err != nil {
			return err
		}
	}
	return nil
}
