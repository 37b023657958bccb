package echarts_test

import (
	"fmt"

	"github.com/matzehuels/kinship/pkg/category"
	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/lineage"
	"github.com/matzehuels/kinship/pkg/render/echarts"
)

func ExampleBuild() {
	nodes := []lineage.Node{
		{ID: "1", Name: "ods_orders", WorkFlowPublishStatus: "1", SchedulePublishStatus: "1"},
		{ID: "2", Name: "dwd_orders", WorkFlowPublishStatus: "1", SchedulePublishStatus: "0"},
		{ID: "3", Name: "ads_sales", WorkFlowPublishStatus: "0"},
	}
	edges := []lineage.Edge{{Source: "1", Target: "2"}, {Source: "2", Target: "3"}}

	opt := echarts.Build(nodes, edges, category.FocusOn("1"), true, i18n.Default())
	for _, item := range opt.Graph().Data {
		fmt.Printf("%s: %s\n", item.Name, item.Category)
	}
	// Output:
	// ods_orders: Current selection
	// dwd_orders: Schedule is not online
	// ads_sales: Workflow is not online
}

func ExampleLabelSegments() {
	fmt.Println(echarts.LabelSegments("ods_user_daily"))
	// Output:
	// [ods user daily]
}
