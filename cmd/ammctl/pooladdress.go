package main

import (
	"fmt"

	uuid "github.com/satori/go.uuid"
	"github.com/spf13/cobra"

	"collectibleAMM/internal/model"
)

func runPoolAddress(cmd *cobra.Command, _ []string) error {
	ownerFlag, _ := cmd.Flags().GetString("owner")
	uuidFlag, _ := cmd.Flags().GetString("uuid")
	programFlag, _ := cmd.Flags().GetString("program-id")

	if ownerFlag == "" {
		return fmt.Errorf("owner is required")
	}
	owner, err := model.ParsePubkey(ownerFlag)
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	program, err := model.ParsePubkey(programFlag)
	if err != nil {
		return fmt.Errorf("program-id: %w", err)
	}
	id, err := poolUUID(uuidFlag)
	if err != nil {
		return err
	}

	pool := model.PoolAddress(program, owner, id)
	fmt.Fprintf(cmd.OutOrStdout(), "uuid=%s pool=%s escrow=%s\n", id, pool, model.EscrowAddress(program, pool))
	return nil
}

// poolUUID parses a base58 uuid or derives a fresh one from a random v4 uuid.
func poolUUID(input string) (model.Pubkey, error) {
	if input != "" {
		id, err := model.ParsePubkey(input)
		if err != nil {
			return model.Pubkey{}, fmt.Errorf("uuid: %w", err)
		}
		return id, nil
	}
	return model.PubkeyFromBytes(uuid.NewV4().Bytes()), nil
}
