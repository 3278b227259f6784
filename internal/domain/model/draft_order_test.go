package model_test

import (
	"testing"

	"restopos/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func menu(id, name, price string) model.MenuItem {
	return model.MenuItem{ID: id, Name: name, Price: dec(price), Category: "Main", IsAvailable: true}
}

func TestDraftOrder_AddRemove_RoundTrip(t *testing.T) {
	d := model.NewDraftOrder()
	curry := menu("m1", "Curry", "12.50")

	d.AddItem(curry)
	d.AddItem(curry)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, int64(2), d.Lines[0].Quantity)
	assert.True(t, d.SubTotal().Equal(dec("25")))

	assert.True(t, d.RemoveItem("m1", false))
	require.Len(t, d.Lines, 1)
	assert.Equal(t, int64(1), d.Lines[0].Quantity)

	assert.True(t, d.RemoveItem("m1", false))
	assert.True(t, d.IsEmpty())
	assert.True(t, d.Total().IsZero())
}

func TestDraftOrder_RemoveAll(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Curry", "10"))
	d.AddItem(menu("m1", "Curry", "10"))
	d.AddItem(menu("m2", "Naan", "3"))

	assert.True(t, d.RemoveItem("m1", true))
	require.Len(t, d.Lines, 1)
	assert.Equal(t, "m2", d.Lines[0].MenuItemID)

	// 無いメニュー
	assert.False(t, d.RemoveItem("zzz", false))
}

// 追加時点の価格を保持する
func TestDraftOrder_AddItem_SnapshotsPrice(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Curry", "10"))

	// 値上げ後に追加しても既存行の価格は変わらない
	d.AddItem(menu("m1", "Curry Deluxe", "20"))

	require.Len(t, d.Lines, 1)
	assert.Equal(t, "Curry", d.Lines[0].Name)
	assert.True(t, d.Lines[0].Price.Equal(dec("10")))
	assert.True(t, d.SubTotal().Equal(dec("20")))
}

func TestDraftOrder_IncrementLine(t *testing.T) {
	d := model.NewDraftOrder()
	assert.False(t, d.IncrementLine("m1"))

	d.AddItem(menu("m1", "Curry", "10"))
	assert.True(t, d.IncrementLine("m1"))
	assert.Equal(t, int64(2), d.Lines[0].Quantity)
}

func TestDraftOrder_DiscountByPercent(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Set", "100"))

	require.NoError(t, d.SetDiscountByPercent(dec("10")))
	assert.True(t, d.Discount().Equal(dec("10")))
	assert.True(t, d.Total().Equal(dec("90")))
	require.NotNil(t, d.DiscountPercent)
	assert.True(t, d.DiscountPercent.Equal(dec("10")))
}

func TestDraftOrder_DiscountByAmount_DerivesPercent(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Set", "100"))

	require.NoError(t, d.SetDiscountByAmount(dec("20")))
	assert.True(t, d.Discount().Equal(dec("20")))
	require.NotNil(t, d.DiscountPercent)
	assert.True(t, d.DiscountPercent.Equal(dec("20")))
	assert.True(t, d.Total().Equal(dec("80")))
}

func TestDraftOrder_DiscountByAmount_ClampedToSubTotal(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Set", "100"))

	require.NoError(t, d.SetDiscountByAmount(dec("500")))
	assert.True(t, d.Discount().Equal(dec("100")))
	assert.True(t, d.Total().IsZero())
}

func TestDraftOrder_DiscountByPercent_Over100(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Set", "40"))

	require.NoError(t, d.SetDiscountByPercent(dec("150")))
	assert.True(t, d.DiscountPercent.Equal(dec("100")))
	assert.True(t, d.Total().IsZero())
}

func TestDraftOrder_NegativeDiscount(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Set", "100"))

	assert.ErrorIs(t, d.SetDiscountByPercent(dec("-1")), model.ErrNegativeDiscount)
	assert.ErrorIs(t, d.SetDiscountByAmount(dec("-0.01")), model.ErrNegativeDiscount)
	assert.True(t, d.Discount().IsZero())
}

// 明細が変わると割引率から値引き額を計算し直す
func TestDraftOrder_PercentRecalculatedOnLineChange(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Set", "100"))
	require.NoError(t, d.SetDiscountByPercent(dec("10")))

	d.AddItem(menu("m2", "Drink", "50"))
	assert.True(t, d.Discount().Equal(dec("15")))
	assert.True(t, d.Total().Equal(dec("135")))
}

func TestDraftOrder_AmountRecalculatedOnLineChange(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Set", "100"))
	d.AddItem(menu("m2", "Drink", "100"))
	require.NoError(t, d.SetDiscountByAmount(dec("150")))

	// 小計100になったら値引きも100に丸める
	d.RemoveItem("m2", true)
	assert.True(t, d.Discount().Equal(dec("100")))
	assert.True(t, d.DiscountPercent.Equal(dec("100")))
}

func TestDraftOrder_ClearDiscount(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Set", "100"))
	require.NoError(t, d.SetDiscountByPercent(dec("25")))

	d.ClearDiscount()
	assert.True(t, d.Discount().IsZero())
	assert.Nil(t, d.DiscountPercent)
	assert.True(t, d.Total().Equal(dec("100")))
}

func TestDraftFromOrder(t *testing.T) {
	table := "4"
	pct := dec("10")
	o := model.Order{
		ID:              "o1",
		OrderType:       model.OrderTypeDineIn,
		TableNo:         &table,
		CustomerName:    "Ann",
		Discount:        dec("3"),
		DiscountPercent: &pct,
		Items: []model.OrderLine{
			{MenuItemID: "m1", Name: "Curry", Price: dec("15"), Quantity: 2},
		},
	}

	d := model.DraftFromOrder(o)
	assert.True(t, d.IsEditing())
	assert.Equal(t, "4", d.TableNo)
	assert.Equal(t, "Ann", d.CustomerName)
	assert.Equal(t, model.DiscountModePercent, d.DiscountMode)
	assert.True(t, d.Discount().Equal(dec("3")))
	assert.True(t, d.Total().Equal(dec("27")))
}

// 額指定の値引きは保存して読み戻しても額のまま
func TestDraftFromOrder_AmountDiscountSurvivesReload(t *testing.T) {
	d := model.NewDraftOrder()
	d.AddItem(menu("m1", "Platter", "1234.56"))
	require.NoError(t, d.SetDiscountByAmount(dec("7")))
	require.NotNil(t, d.DiscountPercent)
	assert.Nil(t, d.StoredPercent())

	o := model.Order{
		ID:              "o1",
		OrderType:       model.OrderTypeTakeAway,
		Items:           d.Lines,
		SubTotal:        d.SubTotal(),
		Discount:        d.Discount(),
		DiscountPercent: d.StoredPercent(),
		TotalAmount:     d.Total(),
	}

	reloaded := model.DraftFromOrder(o)
	assert.Equal(t, model.DiscountModeAmount, reloaded.DiscountMode)
	assert.True(t, reloaded.Discount().Equal(dec("7")), reloaded.Discount().String())

	require.True(t, reloaded.IncrementLine("m1"))
	assert.True(t, reloaded.Discount().Equal(dec("7")), reloaded.Discount().String())
}

func TestDraftOrder_StoredPercent(t *testing.T) {
	d := model.NewDraftOrder()
	assert.Nil(t, d.StoredPercent())

	d.AddItem(menu("m1", "Set", "80"))
	require.NoError(t, d.SetDiscountByPercent(dec("12.5")))
	require.NotNil(t, d.StoredPercent())
	assert.True(t, d.StoredPercent().Equal(dec("12.5")))

	// 0%は保存しない
	require.NoError(t, d.SetDiscountByPercent(decimal.Zero))
	assert.Nil(t, d.StoredPercent())
}

func TestTotalAmount_NeverNegative(t *testing.T) {
	assert.True(t, model.TotalAmount(dec("10"), dec("30")).IsZero())
	assert.True(t, model.TotalAmount(dec("10"), dec("3")).Equal(dec("7")))
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, model.OrderStatusPending.Active())
	assert.True(t, model.OrderStatusPreparing.Active())
	assert.False(t, model.OrderStatusCompleted.Active())
	assert.True(t, model.OrderStatusPaid.Terminal())
	assert.False(t, model.OrderStatusPaid.Valid())
	assert.False(t, model.OrderStatus("served").Valid())
}

func TestOrder_Table(t *testing.T) {
	table := "7"
	assert.Equal(t, "7", model.Order{OrderType: model.OrderTypeDineIn, TableNo: &table}.Table())
	assert.Equal(t, "", model.Order{OrderType: model.OrderTypeTakeAway, TableNo: &table}.Table())
	assert.Equal(t, "", model.Order{OrderType: model.OrderTypeDineIn}.Table())
}
