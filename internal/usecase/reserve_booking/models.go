package reserve_booking

import (
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
)

// Request модель запроса на бронирование
type Request struct {
	UserID      int64     // ID пользователя из токена
	ServiceID   int64     // ID услуги
	DateFrom    time.Time // Первый день (включительно)
	DateTo      time.Time // День выезда (не оплачивается)
	NumOfGuests int       // Количество гостей
}

// Response модель ответа с созданным бронированием
type Response struct {
	Price   int64                  `json:"price"`
	Booking models.BookingResponse `json:"booking"`
}

// Options параметры workflow бронирования
type Options struct {
	HorizonMonths   int           // Горизонт бронирования в месяцах
	ExpirationDelay time.Duration // Через сколько отменяется неподтвержденное бронирование
}
