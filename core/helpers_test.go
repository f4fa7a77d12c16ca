package core

import (
	"fmt"

	"pkt.systems/ahalaj/schema"
)

type seqIDs struct {
	next int
}

func (s *seqIDs) NewTabID() schema.TabID {
	s.next++
	return schema.TabID(fmt.Sprintf("tab-%d", s.next))
}

func testConfig() schema.ServiceConfig {
	cfg, err := schema.NormalizeServiceConfig(schema.ServiceConfig{})
	if err != nil {
		panic(err)
	}
	return cfg
}

func tabWithItems(id schema.TabID, texts ...string) schema.Tab {
	tab := schema.Tab{ID: id, Name: schema.TabName(id), TargetPickCount: 2, Results: []schema.ItemID{}}
	for i, text := range texts {
		tab.Items = append(tab.Items, schema.Item{ID: schema.ItemID(i + 1), Text: text})
	}
	return tab
}
