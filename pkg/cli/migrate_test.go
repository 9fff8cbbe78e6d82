package cli_test

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/dermarisk/pkg/cli"
)

func TestGetIndexConfig(t *testing.T) {
	t.Run("without prefix", func(t *testing.T) {
		cfg := cli.GetIndexConfig("")
		gt.A(t, cfg.Collections).Length(1)
		gt.Value(t, cfg.Collections[0].Name).Equal("assessments")

		fields := cfg.Collections[0].Indexes[0].Fields
		gt.A(t, fields).Length(2)
		gt.Value(t, fields[0].Path).Equal("risk_level")
		gt.Value(t, fields[0].Order).Equal(fireconf.OrderAscending)
		gt.Value(t, fields[1].Path).Equal("created_at")
		gt.Value(t, fields[1].Order).Equal(fireconf.OrderDescending)
	})

	t.Run("with prefix", func(t *testing.T) {
		cfg := cli.GetIndexConfig("staging")
		gt.Value(t, cfg.Collections[0].Name).Equal("staging_assessments")
	})
}
