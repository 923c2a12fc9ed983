package trade

import (
	"strconv"

	"daytrader-client/internal/interfaces"
)

const (
	RouteOrders    = "/orders"
	RoutePortfolio = "/portfolio"
)

// SoldRoute is where a successful sell lands: the order history with the
// new order highlighted.
func SoldRoute(orderID int64) string {
	return RouteOrders + "?sold=" + strconv.FormatInt(orderID, 10)
}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}

var _ interfaces.Navigator = nopNavigator{}
