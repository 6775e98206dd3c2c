// Package models holds the wire shapes exchanged with the Pawtopia backend.
// JSON field names match the backend exactly.
package models

import (
	"strconv"
	"strings"
)

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"

	ProviderGoogle = "google"

	PaymentCOD   = "Cash on Delivery"
	PaymentGCash = "GCash"

	PaymentStatusPending = "PENDING"
	OrderStatusToReceive = "To Receive"

	ServiceGrooming = "Grooming"
	ServiceBoarding = "Boarding"

	ShippingFee = 30.0
)

type User struct {
	UserID       int64            `json:"userId"`
	Username     string           `json:"username"`
	Password     string           `json:"password,omitempty"`
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Email        string           `json:"email"`
	Role         string           `json:"role"`
	GoogleID     string           `json:"googleId,omitempty"`
	AuthProvider string           `json:"authProvider,omitempty"`
	Address      *AddressResponse `json:"address,omitempty"`
}

type UserRef struct {
	UserID int64 `json:"userId"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
	GoogleID  string `json:"googleId,omitempty"`
}

type SignupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type GoogleAuthRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type AddressRequest struct {
	Region                string `json:"region"`
	Province              string `json:"province"`
	City                  string `json:"city"`
	Barangay              string `json:"barangay"`
	PostalCode            string `json:"postalCode"`
	StreetBuildingHouseNo string `json:"streetBuildingHouseNo"`
}

type AddressResponse struct {
	AddressID             int64  `json:"addressId"`
	Region                string `json:"region"`
	Province              string `json:"province"`
	City                  string `json:"city"`
	Barangay              string `json:"barangay"`
	PostalCode            string `json:"postalCode"`
	StreetBuildingHouseNo string `json:"streetBuildingHouseNo"`
}

type Product struct {
	ProductID    int     `json:"productID"`
	Description  string  `json:"description"`
	ProductPrice float64 `json:"productPrice"`
	ProductName  string  `json:"productName"`
	ProductType  string  `json:"productType"`
	Quantity     int     `json:"quantity"`
	QuantitySold int     `json:"quantitySold"`
	ProductImage string  `json:"productImage"`
}

type Cart struct {
	CartID    int64      `json:"cartId"`
	CartItems []CartItem `json:"cartItems"`
}

type CartItem struct {
	CartItemID int     `json:"cartItemId"`
	Quantity   int     `json:"quantity"`
	CartID     int64   `json:"-"`
	Product    Product `json:"product"`
}

// LineTotal is the unit price times quantity.
func (i CartItem) LineTotal() float64 {
	return i.Product.ProductPrice * float64(i.Quantity)
}

type OrderItem struct {
	OrderItemID    int        `json:"orderItemID,omitempty"`
	OrderItemName  string     `json:"orderItemName"`
	OrderItemImage string     `json:"orderItemImage"`
	Price          float64    `json:"price"`
	Quantity       int        `json:"quantity"`
	ProductID      FlexString `json:"productId"`
	IsRated        bool       `json:"isRated,omitempty"`
}

type Order struct {
	OrderID       int         `json:"orderID"`
	OrderDate     string      `json:"orderDate"`
	PaymentMethod string      `json:"paymentMethod"`
	PaymentStatus string      `json:"paymentStatus"`
	OrderStatus   string      `json:"orderStatus"`
	TotalPrice    float64     `json:"totalPrice"`
	OrderItems    []OrderItem `json:"orderItems,omitempty"`
	User          *User       `json:"user,omitempty"`
}

type AppointmentRequest struct {
	Email        string  `json:"email"`
	ContactNo    string  `json:"contactNo"`
	Date         int64   `json:"date"`
	Time         string  `json:"time"`
	GroomService string  `json:"groomService"`
	Price        int     `json:"price"`
	Confirmed    bool    `json:"confirmed"`
	Canceled     bool    `json:"canceled"`
	User         UserRef `json:"user"`
}

type AppointmentResponse struct {
	Success       bool
	Message       string
	AppointmentID int64
}

type Appointment struct {
	AppID        int64  `json:"appId"`
	Date         string `json:"date"`
	Email        string `json:"email"`
	ContactNo    string `json:"contactNo"`
	Time         string `json:"time"`
	Canceled     bool   `json:"canceled"`
	Confirmed    bool   `json:"confirmed"`
	GroomService string `json:"groomService"`
	Price        int    `json:"price"`
}

type PaymentRequest struct {
	TotalPrice  float64 `json:"totalPrice"`
	Description string  `json:"description"`
	Remarks     string  `json:"remarks"`
}

type PaymentLink struct {
	CheckoutURL     string
	ReferenceNumber string
	Success         bool
}

// AdminUserUpdate omits the password when it is blank so the backend keeps the old one.
type AdminUserUpdate struct {
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// FlexString decodes from either a JSON string or a bare number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		v, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		*f = FlexString(v)
	default:
		*f = FlexString(s)
	}
	return nil
}
