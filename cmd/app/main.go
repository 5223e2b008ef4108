// @title Spirometry Bench API
// @version 1.0.0
// @description API управления стендом-имитатором спирометрии: подключение к ПЛК, движение, кривые поток-объем.
// @host localhost:8082
// @BasePath /api/v1
package main

import "github.com/iwtcode/spiroBench/internal/app"

func main() {
	// Создаем и запускаем новый экземпляр приложения fx
	app.New().Run()
}
