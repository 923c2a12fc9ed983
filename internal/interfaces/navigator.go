package interfaces

type Navigator interface {
	Navigate(route string)
}
